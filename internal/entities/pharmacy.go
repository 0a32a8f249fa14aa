package entities

// Coordinates is a geocoded point, valid only for one request
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Pharmacy is one on-duty pharmacy as returned by the directory service
type Pharmacy struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	PostalCode  string `json:"zip"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	ServiceTime string `json:"serviceTime"`
}

// Address returns the single-line postal address, "street, zip city"
func (p Pharmacy) Address() string {
	return p.Street + ", " + p.PostalCode + " " + p.City
}
