package icon

import (
	"strings"

	"github.com/OCAP2/mapmarkup/pkg/core"
)

// DefaultIcon is suggested when no rule matches.
const DefaultIcon = core.IconFireTruck

type rule struct {
	needles []string
	icon    core.IconKey
}

// Within a kind the first rule with a needle contained in the resource category
// wins. Buckets are keyed by kind because the vehicle "bomba" needle also
// matches "motobomba": an equipment pump must never reach the vehicle rules.
var rules = map[core.ResourceKind][]rule{
	core.ResourceVehicle: {
		{[]string{"bomba"}, core.IconFireTruck},
		{[]string{"ambulancia"}, core.IconAmbulance},
		{[]string{"patrulla", "policia"}, core.IconPoliceCar},
		{[]string{"helicóptero"}, core.IconHelicopter},
		{[]string{"lancha", "bote"}, core.IconBoat},
	},
	core.ResourcePersonnel: {
		{[]string{"bombero", "brigadista"}, core.IconFirefighter},
		{[]string{"paramédico", "paramedico", "médico", "medico"}, core.IconParamedic},
		{[]string{"carabinero", "policía", "policia"}, core.IconPoliceOfficer},
		{[]string{"rescate"}, core.IconRescueTeam},
		{[]string{"voluntario"}, core.IconVolunteer},
	},
	core.ResourceEquipment: {
		{[]string{"motobomba", "bomba de agua"}, core.IconWaterPump},
		{[]string{"generador"}, core.IconGenerator},
		{[]string{"manguera"}, core.IconHose},
		{[]string{"escalera"}, core.IconLadder},
	},
}

// Resolve suggests an icon for a resource from its kind and free-text category.
// Matching is a case-insensitive substring test.
func Resolve(kind core.ResourceKind, category string) core.IconKey {
	c := strings.ToLower(category)
	for _, r := range rules[kind] {
		for _, n := range r.needles {
			if strings.Contains(c, n) {
				return r.icon
			}
		}
	}
	return DefaultIcon
}

// ResolveResource is Resolve applied to a Resource record.
func ResolveResource(r core.Resource) core.IconKey {
	return Resolve(r.Kind, r.Category)
}
