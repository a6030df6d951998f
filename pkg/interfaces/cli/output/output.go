package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/VincentNinIA/butv2/pkg/application/dto"
	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format         string
	Verbose        bool
	ProcessingTime time.Duration
}

// Generate renders a batch result in the configured format.
func Generate(w io.Writer, result *dto.BatchResult, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(w, result, config)
	case "json":
		return generateJSONOutput(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateTextOutput(w io.Writer, result *dto.BatchResult, config Config) error {
	fmt.Fprintf(w, "Order Validation Summary\n")
	fmt.Fprintf(w, "========================\n\n")
	fmt.Fprintf(w, "%s\n", result.Summary)
	if config.ProcessingTime > 0 {
		fmt.Fprintf(w, "Processing time: %v\n", config.ProcessingTime)
	}
	fmt.Fprintln(w)

	for _, lr := range result.Lines {
		printLine(w, lr, config.Verbose)
	}

	if len(result.Escalations) > 0 {
		fmt.Fprintf(w, "Escalations (%d):\n", len(result.Escalations))
		for _, n := range result.Escalations {
			fmt.Fprintf(w, "  [%s] %s (%s): requested %d, stock %d, pending %d, incoming %d, deficit %d\n",
				n.Problem, n.ProductName, n.ProductID,
				n.RequestedQuantity, n.StockOnHand, n.PendingSalesOrders, n.IncomingPurchaseOrders, n.Deficit)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printLine(w io.Writer, lr dto.LineResult, verbose bool) {
	switch {
	case lr.SystemError != "":
		fmt.Fprintf(w, "line %d: SYSTEM ERROR: %s\n", lr.Line.LineNumber, lr.SystemError)

	case !lr.Line.Parsed:
		fmt.Fprintf(w, "line %d: not recognized (%s): %q\n",
			lr.Line.LineNumber, lr.Line.FailureReason, lr.Line.RawText)

	default:
		a := lr.Assessment
		fmt.Fprintf(w, "line %d: [%s] %s x%d",
			lr.Line.LineNumber, alertTag(a.AlertLevel), lr.Line.CandidateID, lr.Line.Quantity)
		if lr.Line.PriceGiven {
			fmt.Fprintf(w, " @ %s", lr.Line.UnitPrice.StringFixed(2))
		}
		fmt.Fprintf(w, " -> %s\n", a.PrincipalMessage)

		if verbose && a.DetailedMessage != "" {
			fmt.Fprintf(w, "        %s\n", a.DetailedMessage)
		}
		if a.EstimatedDelivery != nil {
			fmt.Fprintf(w, "        estimated delivery: %s\n", a.EstimatedDelivery.Format("02/01/2006"))
		}
		if lr.Margin != nil && !lr.Margin.Sufficient {
			fmt.Fprintf(w, "        margin %s below the %s minimum\n",
				lr.Margin.Margin.StringFixed(2), lr.Margin.MinimumMargin.StringFixed(2))
		}
		if len(lr.Shortlist) > 0 {
			fmt.Fprintf(w, "        alternatives:\n")
			for _, c := range lr.Shortlist {
				fmt.Fprintf(w, "          %s (%s) score=%.2f similarity=%.2f stock_ok=%t margin_ok=%t\n",
					c.Product.Name, c.Product.ID,
					c.CompositeScore, c.TechnicalSimilarity, c.StockSufficient, c.MarginSufficient)
			}
		}
		if lr.Arbitration != nil && lr.Arbitration.Selected != nil {
			fmt.Fprintf(w, "        suggested: %s (%s)\n",
				lr.Arbitration.Selected.Product.Name, lr.Arbitration.Reason)
		}
	}
	fmt.Fprintln(w)
}

func alertTag(level entities.AlertLevel) string {
	switch level {
	case entities.AlertInfo:
		return "OK"
	case entities.AlertWarning:
		return "WARN"
	default:
		return "ERROR"
	}
}

// jsonLine is the wire form of one line result.
type jsonLine struct {
	LineNumber        int      `json:"line_number"`
	RawText           string   `json:"raw_text"`
	Parsed            bool     `json:"parsed"`
	FailureReason     string   `json:"failure_reason,omitempty"`
	SystemError       string   `json:"system_error,omitempty"`
	ProductID         string   `json:"product_id,omitempty"`
	Quantity          int64    `json:"quantity,omitempty"`
	UnitPrice         string   `json:"unit_price,omitempty"`
	State             string   `json:"state,omitempty"`
	AlertLevel        string   `json:"alert_level,omitempty"`
	EstimatedDelivery string   `json:"estimated_delivery,omitempty"`
	Deficit           int64    `json:"deficit,omitempty"`
	NeedsEscalation   bool     `json:"needs_escalation,omitempty"`
	MarginSufficient  *bool    `json:"margin_sufficient,omitempty"`
	Alternatives      []string `json:"alternatives,omitempty"`
	Suggested         string   `json:"suggested,omitempty"`
}

type jsonBatch struct {
	Summary     string         `json:"summary"`
	Stats       dto.BatchStats `json:"stats"`
	Lines       []jsonLine     `json:"lines"`
	Escalations int            `json:"escalations"`
}

func generateJSONOutput(w io.Writer, result *dto.BatchResult) error {
	batch := jsonBatch{
		Summary:     result.Summary,
		Stats:       result.Stats,
		Escalations: len(result.Escalations),
	}
	for _, lr := range result.Lines {
		jl := jsonLine{
			LineNumber:    lr.Line.LineNumber,
			RawText:       lr.Line.RawText,
			Parsed:        lr.Line.Parsed,
			FailureReason: lr.Line.FailureReason,
			SystemError:   lr.SystemError,
		}
		if lr.Line.Parsed {
			jl.ProductID = string(lr.Line.CandidateID)
			jl.Quantity = int64(lr.Line.Quantity)
			jl.UnitPrice = lr.Line.UnitPrice.StringFixed(2)
		}
		if lr.Assessment != nil {
			jl.State = lr.Assessment.State.String()
			jl.AlertLevel = lr.Assessment.AlertLevel.String()
			jl.Deficit = int64(lr.Assessment.Deficit)
			jl.NeedsEscalation = lr.Assessment.NeedsEscalation
			if lr.Assessment.EstimatedDelivery != nil {
				jl.EstimatedDelivery = lr.Assessment.EstimatedDelivery.Format("2006-01-02")
			}
		}
		if lr.Margin != nil {
			ok := lr.Margin.Sufficient
			jl.MarginSufficient = &ok
		}
		for _, c := range lr.Shortlist {
			jl.Alternatives = append(jl.Alternatives, string(c.Product.ID))
		}
		if lr.Arbitration != nil && lr.Arbitration.Selected != nil {
			jl.Suggested = string(lr.Arbitration.Selected.Product.ID)
		}
		batch.Lines = append(batch.Lines, jl)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batch)
}
