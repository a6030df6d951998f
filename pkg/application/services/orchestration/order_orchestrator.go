package orchestration

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/application/dto"
	appservices "github.com/VincentNinIA/butv2/pkg/application/services"
	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
	domainservices "github.com/VincentNinIA/butv2/pkg/domain/services"
)

// OrderOrchestrator composes the parser, the availability resolver, the
// margin evaluator, the alternative ranker and the arbiter into a per-line
// and per-batch pipeline. Lines are independent units of work; no line's
// failure affects another line's evaluation.
type OrderOrchestrator struct {
	parser       *appservices.LineParser
	availability *appservices.AvailabilityService
	ranker       *appservices.AlternativeRanker
	arbiter      appservices.AlternativeArbiter
	catalog      repositories.CatalogRepository
	notifier     repositories.Notifier
}

func NewOrderOrchestrator(
	parser *appservices.LineParser,
	availability *appservices.AvailabilityService,
	ranker *appservices.AlternativeRanker,
	arbiter appservices.AlternativeArbiter,
	catalog repositories.CatalogRepository,
	notifier repositories.Notifier,
) *OrderOrchestrator {
	return &OrderOrchestrator{
		parser:       parser,
		availability: availability,
		ranker:       ranker,
		arbiter:      arbiter,
		catalog:      catalog,
		notifier:     notifier,
	}
}

// ValidateOrder processes one order batch. Every line yields a result; a
// batch with zero valid lines still returns a structured summary.
func (o *OrderOrchestrator) ValidateOrder(
	ctx context.Context,
	batchText string,
	orderDate time.Time,
	desiredDelivery *time.Time,
) *dto.BatchResult {
	lines := o.parser.ParseBatch(batchText)

	result := &dto.BatchResult{
		Lines: make([]dto.LineResult, 0, len(lines)),
	}
	for _, line := range lines {
		lr := o.processLineSafely(ctx, line, orderDate, desiredDelivery)
		if lr.Escalation != nil {
			result.Escalations = append(result.Escalations, *lr.Escalation)
		}
		result.Lines = append(result.Lines, lr)
	}

	result.Stats = aggregate(result.Lines)
	result.Summary = summarize(result.Stats, len(result.Escalations))
	return result
}

// processLineSafely confines an internal fault to its line. The batch
// continues with a synthetic system-error outcome for that line.
func (o *OrderOrchestrator) processLineSafely(
	ctx context.Context,
	line entities.OrderLine,
	orderDate time.Time,
	desiredDelivery *time.Time,
) (lr dto.LineResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("order line %d: internal fault: %v", line.LineNumber, r)
			lr = dto.LineResult{
				Line:        line,
				SystemError: fmt.Sprintf("internal fault while evaluating the line: %v", r),
			}
		}
	}()
	return o.processLine(ctx, line, orderDate, desiredDelivery)
}

func (o *OrderOrchestrator) processLine(
	ctx context.Context,
	line entities.OrderLine,
	orderDate time.Time,
	desiredDelivery *time.Time,
) dto.LineResult {
	lr := dto.LineResult{Line: line}
	if !line.Parsed {
		return lr
	}

	var assessment entities.AvailabilityAssessment
	var margin *domainservices.MarginAssessment

	if line.ProductFound {
		product, err := o.catalog.Lookup(line.CandidateID)
		if err != nil {
			// The catalog was reloaded between parse and evaluation.
			assessment = o.availability.AssessUnknown(line.CandidateID, line.Quantity, orderDate, desiredDelivery)
		} else {
			assessment = o.availability.Assess(product, line.Quantity, orderDate, desiredDelivery)
			var proposed *decimal.Decimal
			if line.PriceGiven {
				p := line.UnitPrice
				proposed = &p
			}
			m := domainservices.EvaluateMargin(product, proposed)
			margin = &m
		}
	} else {
		assessment = o.availability.AssessUnknown(line.CandidateID, line.Quantity, orderDate, desiredDelivery)
	}

	lr.Assessment = &assessment
	lr.Margin = margin

	marginInsufficient := margin != nil && !margin.Sufficient
	if o.shouldSearchAlternatives(assessment, marginInsufficient) {
		problem := classifyProblem(assessment, marginInsufficient)
		lr.Shortlist = o.ranker.Shortlist(ctx, assessment.Product, line.Quantity)
		if o.arbiter != nil {
			decision := o.arbiter.Arbitrate(ctx, assessment.Product, problem, line.Quantity, lr.Shortlist)
			lr.Arbitration = &decision
		}
	}

	if assessment.NeedsEscalation || marginInsufficient {
		lr.Escalation = o.escalate(assessment, marginInsufficient, lr.Shortlist)
	}
	return lr
}

// shouldSearchAlternatives is the trigger policy. A with_incoming line that
// arrives in time never triggers the search; suggestions there would only
// confuse the requester and waste the external call.
func (o *OrderOrchestrator) shouldSearchAlternatives(
	a entities.AvailabilityAssessment,
	marginInsufficient bool,
) bool {
	switch a.State {
	case entities.StateShortage, entities.StateNonexistent:
		return true
	case entities.StateWithIncoming:
		return a.NeedsEscalation || marginInsufficient
	default:
		return marginInsufficient
	}
}

func classifyProblem(a entities.AvailabilityAssessment, marginInsufficient bool) entities.ProblemType {
	switch {
	case a.State == entities.StateNonexistent:
		return entities.ProblemUnknownProduct
	case a.State == entities.StateShortage:
		return entities.ProblemShortage
	case a.DelayExceeded:
		return entities.ProblemDelayExceeded
	case marginInsufficient:
		return entities.ProblemInsufficientMargin
	default:
		return entities.ProblemShortage
	}
}

// escalate builds the handoff payload and journals it. A notifier failure
// is logged; the notice still rides on the line result.
func (o *OrderOrchestrator) escalate(
	a entities.AvailabilityAssessment,
	marginInsufficient bool,
	shortlist []entities.AlternativeCandidate,
) *entities.EscalationNotice {
	notice := entities.EscalationNotice{
		ID:      uuid.New().String(),
		Problem: classifyProblem(a, marginInsufficient),

		ProductID:   a.Product.ID,
		ProductName: a.Product.Name,

		RequestedQuantity:      a.RequestedQuantity,
		StockOnHand:            a.Product.StockOnHand,
		PendingSalesOrders:     a.Product.PendingSalesOrders,
		IncomingPurchaseOrders: a.Product.IncomingPurchaseOrders,
		NetAvailable:           a.Product.NetAvailable(),
		Deficit:                a.Deficit,

		OrderDate:         a.OrderDate,
		DesiredDelivery:   a.DesiredDelivery,
		EstimatedDelivery: a.EstimatedDelivery,

		Alternatives: shortlist,
		RaisedAt:     time.Now(),
	}
	if a.DelayExceeded && a.EstimatedDelivery != nil && a.DesiredDelivery != nil {
		notice.DelayOverrunDays = int(a.EstimatedDelivery.Sub(*a.DesiredDelivery).Hours() / 24)
	}

	if o.notifier != nil {
		if err := o.notifier.Escalate(notice); err != nil {
			log.Printf("escalation handoff failed for %s: %v", notice.ProductID, err)
		}
	}
	return &notice
}

func aggregate(lines []dto.LineResult) dto.BatchStats {
	stats := dto.BatchStats{
		TotalLines: len(lines),
		TotalPrice: decimal.Zero,
	}
	for _, lr := range lines {
		if !lr.Line.Parsed || lr.SystemError != "" {
			stats.ErrorLines++
			continue
		}
		stats.ParsedLines++
		stats.TotalQuantity += lr.Line.Quantity
		stats.TotalPrice = stats.TotalPrice.Add(lr.Line.LineTotal)

		marginInsufficient := lr.Margin != nil && !lr.Margin.Sufficient
		switch {
		case lr.Assessment != nil && lr.Assessment.AlertLevel == entities.AlertError, marginInsufficient:
			stats.ErrorLines++
		case lr.Assessment != nil && lr.Assessment.AlertLevel == entities.AlertWarning:
			stats.WarningLines++
		default:
			stats.OKLines++
		}
	}
	return stats
}

func summarize(stats dto.BatchStats, escalations int) string {
	if stats.ParsedLines == 0 {
		return fmt.Sprintf("no valid lines among the %d submitted", stats.TotalLines)
	}
	return fmt.Sprintf(
		"%d lines processed (%d valid): %d ok, %d to watch, %d in error; %d units for %s; %d escalation(s)",
		stats.TotalLines, stats.ParsedLines,
		stats.OKLines, stats.WarningLines, stats.ErrorLines,
		stats.TotalQuantity, stats.TotalPrice.StringFixed(2), escalations,
	)
}
