package models

// BloodGroups lists the groups the platform tracks, in display order.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// BloodBank is one search result. Price mirrors the server's pricePerUnit.
type BloodBank struct {
	ID           string         `json:"_id"`
	Name         string         `json:"name"`
	Address      string         `json:"address"`
	Distance     float64        `json:"distance"`
	TravelTime   float64        `json:"travelTime"`
	Price        float64        `json:"pricePerUnit"`
	Availability bool           `json:"availability"`
	Phone        string         `json:"contactNumber,omitempty"`
	BloodStock   map[string]int `json:"bloodStock,omitempty"`
}

// BloodBankQuery holds the search filters sent to /blood-banks.
type BloodBankQuery struct {
	Lat           float64
	Lng           float64
	Radius        float64
	MaxTravelTime float64
	MaxPrice      float64
	BloodGroup    string
}

// Address is the reverse-geocoding result.
type Address struct {
	Locality    string `json:"locality"`
	City        string `json:"city"`
	Postcode    string `json:"postcode"`
	CountryName string `json:"countryName"`
}
