package model

const (
	StageSaved     = "saved"
	StageApplied   = "applied"
	StageScreening = "screening"
	StageAptitude  = "aptitude"
	StageTechnical = "technical"
	StageInterview = "interview"
	StageOffer     = "offer"
	StageRejected  = "rejected"
)

var defaultColumns = []Column{
	{ID: StageSaved, Title: "Saved", Color: "#64748b"},
	{ID: StageApplied, Title: "Applied", Color: "#3b82f6"},
	{ID: StageScreening, Title: "Screening", Color: "#06b6d4"},
	{ID: StageAptitude, Title: "Aptitude", Color: "#8b5cf6"},
	{ID: StageTechnical, Title: "Technical", Color: "#f59e0b"},
	{ID: StageInterview, Title: "Interview", Color: "#ec4899"},
	{ID: StageOffer, Title: "Offer", Color: "#22c55e"},
	{ID: StageRejected, Title: "Rejected", Color: "#ef4444"},
}

// Rejected is a terminal branch and never a "next stage".
var pipelineOrder = []string{
	StageSaved,
	StageApplied,
	StageScreening,
	StageAptitude,
	StageTechnical,
	StageInterview,
	StageOffer,
}

var TrackingStages = map[string]struct{}{
	StageApplied:   {},
	StageScreening: {},
	StageAptitude:  {},
	StageTechnical: {},
	StageInterview: {},
	StageOffer:     {},
	StageRejected:  {},
}

func IsTrackingStage(columnID string) bool {
	_, ok := TrackingStages[columnID]
	return ok
}

func DefaultBoard() Board {
	out := make(Board, len(defaultColumns))
	for i, col := range defaultColumns {
		out[i] = col
		out[i].Items = []Card{}
	}
	return out
}

func PipelineOrder() []string {
	out := make([]string, len(pipelineOrder))
	copy(out, pipelineOrder)
	return out
}

// NextStage returns the pipeline successor of columnID. It reports false for the
// last stage and for ids outside the pipeline.
func NextStage(columnID string) (string, bool) {
	for i, id := range pipelineOrder {
		if id != columnID {
			continue
		}
		if i+1 >= len(pipelineOrder) {
			return "", false
		}
		return pipelineOrder[i+1], true
	}
	return "", false
}
