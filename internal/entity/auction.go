package entity

// AuctionDocument is one parsed auction notice.
type AuctionDocument struct {
	SourceFilename string       `json:"source_filename"`
	AuctionDate    *string      `json:"auction_date,omitempty"`
	Auctioneer     *string      `json:"auctioneer,omitempty"`
	Location       *string      `json:"location,omitempty"`
	Vehicles       []VehicleLot `json:"vehicles"`
}

// VehicleLot is one row of an auction's vehicle table. Fields are never
// omitted: a value the notice does not carry is the empty string.
type VehicleLot struct {
	ItemNumber string `json:"item_number"`
	Year       string `json:"year"`
	Make       string `json:"make"`
	Plate      string `json:"plate"`
	State      string `json:"state"`
	VehicleID  string `json:"vehicle_id"`
	Lienholder string `json:"lienholder"`
}

// StrOrEmpty dereferences an optional string.
func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// DataRow renders one vehicle as a data CSV row (see constants.DataColumns).
func (d *AuctionDocument) DataRow(v VehicleLot) []string {
	return []string{
		StrOrEmpty(d.AuctionDate),
		StrOrEmpty(d.Auctioneer),
		StrOrEmpty(d.Location),
		d.SourceFilename,
		v.ItemNumber,
		v.Year,
		v.Make,
		v.Plate,
		v.State,
		v.VehicleID,
		v.Lienholder,
	}
}
