package domain

import (
	"strconv"

	"github.com/samber/lo"
)

// Accessibility labels shown to users.
const (
	LabelYes     = "Так"
	LabelNo      = "Ні"
	LabelUnknown = "Невідомо"
)

const mapsBaseURL = "https://www.google.com/maps?q="

// DisplayShelter is a Shelter as the dashboard sees it. The JSON keys are the
// Ukrainian column labels the front end binds to.
type DisplayShelter struct {
	Name          string   `json:"Назва"`
	Community     string   `json:"ОТГ"`
	Settlement    string   `json:"Населений пункт"`
	District      string   `json:"Район"`
	Area          *float64 `json:"Площа"`
	Address       string   `json:"Адреса"`
	ShelterType   string   `json:"Тип"`
	BuildingKind  string   `json:"Будова"`
	Capacity      *float64 `json:"Місткість"`
	Accessibility string   `json:"Інклюзивність"`
	MapLink       string   `json:"Посилання"`
	Longitude     *float64 `json:"longitude"`
	Latitude      *float64 `json:"latitude"`
}

// DisplayColumns lists the labelled columns in table order.
var DisplayColumns = []string{
	"Назва", "ОТГ", "Населений пункт", "Район", "Площа", "Адреса",
	"Тип", "Будова", "Місткість", "Інклюзивність", "Посилання",
}

// HasLocation reports whether the row can be drawn on the map.
func (d DisplayShelter) HasLocation() bool {
	return d.Longitude != nil && d.Latitude != nil
}

// CapacityOrZero counts unknown capacity as zero.
func (d DisplayShelter) CapacityOrZero() float64 {
	if d.Capacity == nil {
		return 0
	}
	return *d.Capacity
}

// MapLink builds a Google Maps link, latitude first. It is empty when either
// coordinate is missing.
func MapLink(lon, lat *float64) string {
	if lon == nil || lat == nil {
		return ""
	}
	return mapsBaseURL + formatCoord(*lat) + "," + formatCoord(*lon)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AccessibilityLabel maps the canonical flag to its tri-state label.
func AccessibilityLabel(s Shelter) string {
	switch {
	case !s.AccessibleKnown:
		return LabelUnknown
	case s.Accessible:
		return LabelYes
	default:
		return LabelNo
	}
}

// ToDisplay derives the presentation row for one shelter.
func ToDisplay(s Shelter) DisplayShelter {
	return DisplayShelter{
		Name:          s.Name,
		Community:     s.Community,
		Settlement:    s.Settlement,
		District:      s.District,
		Area:          s.Area,
		Address:       s.Address,
		ShelterType:   s.ShelterType,
		BuildingKind:  s.BuildingKind,
		Capacity:      s.Capacity,
		Accessibility: AccessibilityLabel(s),
		MapLink:       MapLink(s.Longitude, s.Latitude),
		Longitude:     s.Longitude,
		Latitude:      s.Latitude,
	}
}

// BuildDisplay derives the display table. The canonical slice is not touched.
func BuildDisplay(shelters []Shelter) []DisplayShelter {
	return lo.Map(shelters, func(s Shelter, _ int) DisplayShelter {
		return ToDisplay(s)
	})
}

// Row renders the labelled columns as strings, in DisplayColumns order.
func (d DisplayShelter) Row() []string {
	return []string{
		d.Name, d.Community, d.Settlement, d.District, formatOptional(d.Area),
		d.Address, d.ShelterType, d.BuildingKind, formatOptional(d.Capacity),
		d.Accessibility, d.MapLink,
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatCoord(*v)
}
