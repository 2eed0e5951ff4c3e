package charts

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/vehdash/internal/dataset"
)

// PanelID names one chart of the dashboard.
type PanelID string

const (
	PanelOdometerHistogram PanelID = "odometer_hist"
	PanelOdometerPrice     PanelID = "odometer_price"
	PanelTypesByModel      PanelID = "types_by_model"
	PanelPriceByCondition  PanelID = "price_by_condition"
	PanelPriceByType       PanelID = "price_by_type"
	PanelModelComparison   PanelID = "model_comparison"
)

// PanelIDs lists every panel in display order.
func PanelIDs() []PanelID {
	return []PanelID{
		PanelOdometerHistogram,
		PanelOdometerPrice,
		PanelTypesByModel,
		PanelPriceByCondition,
		PanelPriceByType,
		PanelModelComparison,
	}
}

// ParsePanelID validates a panel name.
func ParsePanelID(s string) (PanelID, error) {
	for _, id := range PanelIDs() {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// Params tunes the panels.
type Params struct {
	HistogramBins    int
	StackedTopModels int
	GroupTopN        int
	CompareTopModels int
	CompareBins      int
	ModelA, ModelB   string
	Normalize        bool
}

// DefaultParams mirrors the dashboard defaults.
func DefaultParams() Params {
	return Params{
		HistogramBins:    50,
		StackedTopModels: 15,
		GroupTopN:        8,
		CompareTopModels: 30,
		CompareBins:      40,
		Normalize:        true,
	}
}

// Panel is one prepared chart. Exactly one data field is set, or Notice
// explains why the chart cannot be drawn.
type Panel struct {
	ID         PanelID               `json:"id"`
	Title      string                `json:"title"`
	Notice     string                `json:"notice,omitempty"`
	Histogram  *HistogramData        `json:"histogram,omitempty"`
	Scatter    *ScatterData          `json:"scatter,omitempty"`
	Breakdown  *BreakdownData        `json:"breakdown,omitempty"`
	Grouped    *GroupedHistogramData `json:"grouped,omitempty"`
	Comparison *ComparisonData       `json:"comparison,omitempty"`

	Err error `json:"-"`
}

// Ready reports whether the panel has data to draw.
func (p Panel) Ready() bool { return p.Err == nil }

// Build prepares one panel from view.
func Build(view *dataset.Table, id PanelID, p Params) Panel {
	panel := Panel{ID: id, Title: title(id, p)}
	var err error
	switch id {
	case PanelOdometerHistogram:
		panel.Histogram, err = Histogram(view, dataset.ColOdometer, p.HistogramBins)
	case PanelOdometerPrice:
		panel.Scatter, err = Scatter(view, dataset.ColOdometer, dataset.ColPrice, dataset.ColCondition)
	case PanelTypesByModel:
		panel.Breakdown, err = CategoryBreakdown(view, dataset.ColModel, dataset.ColType, p.StackedTopModels)
	case PanelPriceByCondition:
		panel.Grouped, err = GroupedHistogram(view, dataset.ColPrice, dataset.ColCondition, p.GroupTopN, p.HistogramBins, Overlay)
	case PanelPriceByType:
		panel.Grouped, err = GroupedHistogram(view, dataset.ColPrice, dataset.ColType, p.GroupTopN, p.HistogramBins, Stacked)
	case PanelModelComparison:
		panel.Comparison, err = Comparison(view, dataset.ColPrice, dataset.ColModel, p.ModelA, p.ModelB, p.CompareTopModels, p.CompareBins, p.Normalize)
	default:
		err = fmt.Errorf("unknown chart %q", id)
	}
	if err != nil {
		panel.Err = err
		panel.Notice = notice(err)
	}
	return panel
}

func title(id PanelID, p Params) string {
	switch id {
	case PanelOdometerHistogram:
		return "Odometer histogram"
	case PanelOdometerPrice:
		return "Odometer vs price"
	case PanelTypesByModel:
		return fmt.Sprintf("Vehicle types by model (top %d)", p.StackedTopModels)
	case PanelPriceByCondition:
		return "Price distribution by condition"
	case PanelPriceByType:
		return "Price distribution by type"
	case PanelModelComparison:
		if p.ModelA != "" && p.ModelB != "" {
			return fmt.Sprintf("Price distribution: %s vs %s", p.ModelA, p.ModelB)
		}
		return "Price distribution: compare two models"
	}
	return string(id)
}

func notice(err error) string {
	switch {
	case errors.Is(err, dataset.ErrColumnMissing):
		return "Not available for this dataset: " + err.Error()
	case errors.Is(err, ErrInsufficientData):
		return "Not enough data for this chart with the current filters (" + err.Error() + ")"
	default:
		return err.Error()
	}
}
