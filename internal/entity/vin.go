package entity

import "github.com/joseph-ayodele/auction-tracker/constants"

// VINDetail is the decoded attribute set for one VIN. Order keeps the
// attribute names in the sequence the decoder returned them.
type VINDetail struct {
	VIN        string            `json:"vin"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Order      []string          `json:"-"`
	Error      string            `json:"error,omitempty"`
}

// Failed reports whether the lookup for this VIN failed.
func (d VINDetail) Failed() bool {
	return d.Error != ""
}

// Get returns a column value, including the synthetic VIN and Error columns.
func (d VINDetail) Get(column string) string {
	switch column {
	case constants.VINColumn:
		return d.VIN
	case constants.ErrorColumn:
		if d.Error != "" {
			return d.Error
		}
	}
	return d.Attributes[column]
}

// VINColumns returns VIN first, then every other column in first-seen order.
func VINColumns(details []VINDetail) []string {
	cols := []string{constants.VINColumn}
	seen := map[string]struct{}{constants.VINColumn: {}}
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	for _, d := range details {
		if d.Failed() {
			add(constants.ErrorColumn)
			continue
		}
		for _, name := range d.Order {
			add(name)
		}
	}
	return cols
}
