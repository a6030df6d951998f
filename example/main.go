package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	appservices "github.com/VincentNinIA/butv2/pkg/application/services"
	"github.com/VincentNinIA/butv2/pkg/application/services/orchestration"
	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/services"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/notify"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	// Build a small catalog in memory.
	catalog := memory.NewCatalogRepository()
	if err := catalog.ReplaceAll([]*entities.Product{
		mustProduct("76000 00420000", "CAISSE US SC 450X300X230MM", 2000, 500, 1000, 0.60, "2 semaines"),
		mustProduct("76000 00430000", "CAISSE US SC 400X300X200MM", 5000, 100, 0, 0.55, "2 semaines"),
		mustProduct("76000 00440000", "CAISSE US SC 600X400X400MM", 10, 40, 20, 0.90, "3 semaines après validation BAT"),
	}); err != nil {
		fmt.Printf("catalog setup failed: %v\n", err)
		return
	}

	journal := notify.NewJournal()
	journal.Subscribe(func(n entities.EscalationNotice) error {
		fmt.Printf(">> escalation [%s] for %s: requested %d, deficit %d\n",
			n.Problem, n.ProductName, n.RequestedQuantity, n.Deficit)
		return nil
	})

	orchestrator := orchestration.NewOrderOrchestrator(
		appservices.NewLineParser(catalog),
		appservices.NewAvailabilityService(),
		appservices.NewAlternativeRanker(catalog, nil, appservices.DefaultRankerPolicy()),
		appservices.NewRuleBasedArbiter(),
		catalog,
		journal,
	)

	order := `76000 00420000 CAISSE US SC 450X300X230MM Qté 300 Prix : 0,7€
76000 00440000 CAISSE US SC 600X400X400MM Qté 100 Prix : 1,1€
ZZZ-000 PRODUIT INCONNU Qté 10 Prix : 1€`

	orderDate := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	result := orchestrator.ValidateOrder(ctx, order, orderDate, nil)

	fmt.Println()
	fmt.Println(result.Summary)
	for _, lr := range result.Lines {
		if !lr.Line.Parsed {
			fmt.Printf("line %d: %s\n", lr.Line.LineNumber, lr.Line.FailureReason)
			continue
		}
		fmt.Printf("line %d: %s -> %s\n",
			lr.Line.LineNumber, lr.Line.CandidateID, lr.Assessment.PrincipalMessage)
		if lr.Arbitration != nil && lr.Arbitration.Selected != nil {
			fmt.Printf("         suggested alternative: %s\n", lr.Arbitration.Selected.Product.Name)
		}
	}
}

func mustProduct(id, name string, stock, pending, incoming entities.Quantity, purchase float64, delayText string) *entities.Product {
	pp := decimal.NewFromFloat(purchase)
	p, err := entities.NewProduct(
		entities.ProductID(id), name,
		stock, pending, incoming,
		pp,
		pp.Mul(decimal.NewFromFloat(1.15)),
		pp.Mul(decimal.NewFromFloat(0.15)),
		delayText,
		services.NewDelayParser().Parse(delayText),
	)
	if err != nil {
		panic(err)
	}
	return p
}
