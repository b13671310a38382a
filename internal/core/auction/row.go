package auction

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

// item, year, make, plate, state, vehicle id, then the lienholder absorbs
// the rest of the line (possibly nothing)
var reVehicleRow = regexp.MustCompile(
	`^(\d+)\s+` +
		`(\d{4})\s+` +
		`([A-Za-z0-9\-/]+)\s+` +
		`([A-Za-z0-9]+)\s+` +
		`([A-Za-z]{2,3})\s+` +
		`([A-Za-z0-9]+)` +
		`(?:\s+(.*))?$`,
)

// ParseRow matches a logical row against the vehicle field grammar. Rows
// that do not match are reported with ok=false and carry no error: header
// repeats, footers and mis-merged lines are expected in the table body.
func ParseRow(row LogicalRow) (entity.VehicleLot, bool) {
	m := reVehicleRow.FindStringSubmatch(strings.TrimSpace(row.Text))
	if m == nil {
		return entity.VehicleLot{}, false
	}
	return entity.VehicleLot{
		ItemNumber: m[1],
		Year:       m[2],
		Make:       m[3],
		Plate:      m[4],
		State:      m[5],
		VehicleID:  m[6],
		Lienholder: strings.TrimSpace(m[7]),
	}, true
}
