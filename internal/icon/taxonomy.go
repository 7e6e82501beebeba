// Package icon holds the static icon and category taxonomy and the heuristic
// that suggests an icon for an external resource.
package icon

import "github.com/OCAP2/mapmarkup/pkg/core"

// Group is an icon category
type Group string

const (
	GroupVehicles   Group = "vehicles"
	GroupPersonnel  Group = "personnel"
	GroupEquipment  Group = "equipment"
	GroupFacilities Group = "facilities"
	GroupAlerts     Group = "alerts"
)

// Info describes how an icon is presented
type Info struct {
	Key   core.IconKey `json:"key"`
	Group Group        `json:"group"`
	Color string       `json:"color"`
	Label string       `json:"label"`
}

// Meta is the fixed presentation of a drawing category
type Meta struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

var icons = []Info{
	{core.IconFireTruck, GroupVehicles, "#dc2626", "Fire truck"},
	{core.IconAmbulance, GroupVehicles, "#f8fafc", "Ambulance"},
	{core.IconPoliceCar, GroupVehicles, "#1d4ed8", "Police car"},
	{core.IconHelicopter, GroupVehicles, "#f97316", "Helicopter"},
	{core.IconBoat, GroupVehicles, "#0891b2", "Boat"},
	{core.IconWaterTanker, GroupVehicles, "#0ea5e9", "Water tanker"},

	{core.IconFirefighter, GroupPersonnel, "#b91c1c", "Firefighter"},
	{core.IconParamedic, GroupPersonnel, "#16a34a", "Paramedic"},
	{core.IconPoliceOfficer, GroupPersonnel, "#1e40af", "Police officer"},
	{core.IconRescueTeam, GroupPersonnel, "#ea580c", "Rescue team"},
	{core.IconVolunteer, GroupPersonnel, "#ca8a04", "Volunteer"},

	{core.IconWaterPump, GroupEquipment, "#0284c7", "Water pump"},
	{core.IconGenerator, GroupEquipment, "#4b5563", "Generator"},
	{core.IconHose, GroupEquipment, "#2563eb", "Hose"},
	{core.IconLadder, GroupEquipment, "#78716c", "Ladder"},

	{core.IconCommandPost, GroupFacilities, "#7c3aed", "Command post"},
	{core.IconHospital, GroupFacilities, "#db2777", "Hospital"},
	{core.IconShelter, GroupFacilities, "#059669", "Shelter"},
	{core.IconWaterPoint, GroupFacilities, "#06b6d4", "Water point"},

	{core.IconFire, GroupAlerts, "#ef4444", "Fire"},
	{core.IconDanger, GroupAlerts, "#facc15", "Danger"},
	{core.IconEvacuation, GroupAlerts, "#22c55e", "Evacuation"},
}

var categories = map[core.Category]Meta{
	core.CategoryHazardZone:      {Color: "#ef4444", Label: "Hazard zone"},
	core.CategorySafeZone:        {Color: "#22c55e", Label: "Safe zone"},
	core.CategoryEvacuationRoute: {Color: "#f59e0b", Label: "Evacuation route"},
	core.CategoryStagingArea:     {Color: "#3b82f6", Label: "Staging area"},
	core.CategoryWaterSource:     {Color: "#06b6d4", Label: "Water source"},
	core.CategoryFireLine:        {Color: "#dc2626", Label: "Fire line"},
	core.CategoryAccessPoint:     {Color: "#8b5cf6", Label: "Access point"},
	core.CategoryRestrictedArea:  {Color: "#6b7280", Label: "Restricted area"},
	core.CategoryMedicalArea:     {Color: "#ec4899", Label: "Medical area"},
	core.CategoryOther:           {Color: "#64748b", Label: "Other"},
}

// Icons returns the full taxonomy in display order.
func Icons() []Info {
	out := make([]Info, len(icons))
	copy(out, icons)
	return out
}

// ByGroup returns the icons of one group in display order.
func ByGroup(g Group) []Info {
	var out []Info
	for _, i := range icons {
		if i.Group == g {
			out = append(out, i)
		}
	}
	return out
}

// Lookup returns the presentation of an icon key.
func Lookup(key core.IconKey) (Info, bool) {
	for _, i := range icons {
		if i.Key == key {
			return i, true
		}
	}
	return Info{}, false
}

// Valid reports whether key belongs to the taxonomy.
func Valid(key core.IconKey) bool {
	_, ok := Lookup(key)
	return ok
}

// CategoryMeta returns the fixed colour and label of a drawing category. Unknown
// categories fall back to "other".
func CategoryMeta(c core.Category) Meta {
	if m, ok := categories[c]; ok {
		return m
	}
	return categories[core.CategoryOther]
}
