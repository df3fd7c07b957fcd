package records

// Summary describes the grouped report of a kind: records are grouped by the
// GroupBy JSON paths and the numeric Sum paths are totalled per group.
type Summary struct {
	GroupBy []string
	Sum     []string
}

// Kind describes one record type and how it is stored and addressed.
type Kind struct {
	// Name is the route segment, e.g. "melting-logs".
	Name        string
	Title       string
	Description string
	// Collection is the table holding the documents.
	Collection string
	// UniqueField is the JSON field with a unique index, if any.
	UniqueField string
	// DateField is the JSON field used by the date filter.
	DateField string
	Summary   *Summary
}

var (
	ImpactTests = Kind{
		Name:        "impact-tests",
		Title:       "Impact Test",
		Description: "Charpy impact test results per part and heat.",
		Collection:  "impact_tests",
		DateField:   "dateOfInspection",
	}
	TensileTests = Kind{
		Name:        "tensile-tests",
		Title:       "Tensile Test",
		Description: "Tensile bar results: loads, strengths and elongation.",
		Collection:  "tensile_tests",
		DateField:   "dateOfInspection",
	}
	MicroTensileTests = Kind{
		Name:        "micro-tensile-tests",
		Title:       "Micro Tensile Test",
		Description: "Sub-size tensile specimens taken from the DISA lines.",
		Collection:  "micro_tensile_tests",
		DateField:   "dateOfInspection",
	}
	ProcessLogs = Kind{
		Name:        "process-logs",
		Title:       "Process Log",
		Description: "Moulding and pouring log with metal composition and treatment data.",
		Collection:  "process_logs",
		UniqueField: "heatCode",
		DateField:   "date",
		Summary: &Summary{
			GroupBy: []string{"date"},
			Sum:     []string{"quantityOfMoulds", "tappingWt"},
		},
	}
	MeltingLogs = Kind{
		Name:        "melting-logs",
		Title:       "Melting Log",
		Description: "Induction furnace heats: charge mix, power and tapping.",
		Collection:  "melting_logs",
		UniqueField: "heatNo",
		DateField:   "date",
		Summary: &Summary{
			GroupBy: []string{"date", "shift"},
			Sum:     []string{"tapping.metalKgs", "totalUnits"},
		},
	}
	CupolaHolderLogs = Kind{
		Name:        "cupola-holder-logs",
		Title:       "Cupola Holder Log",
		Description: "Cupola holder taps with additions and pouring destination.",
		Collection:  "cupola_holder_logs",
		UniqueField: "heatNo",
		DateField:   "date",
		Summary: &Summary{
			GroupBy: []string{"date", "shift"},
			Sum:     []string{"tapping.metalKgs"},
		},
	}
)

// All lists every record kind in menu order.
func All() []Kind {
	return []Kind{ImpactTests, TensileTests, MicroTensileTests, ProcessLogs, MeltingLogs, CupolaHolderLogs}
}

// Collections returns the table names of every kind.
func Collections() []string {
	kinds := All()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.Collection)
	}
	return out
}
