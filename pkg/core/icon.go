package core

// IconKey identifies an icon from the fixed taxonomy.
type IconKey string

// Vehicles
const (
	IconFireTruck   IconKey = "fire_truck"
	IconAmbulance   IconKey = "ambulance"
	IconPoliceCar   IconKey = "police_car"
	IconHelicopter  IconKey = "helicopter"
	IconBoat        IconKey = "boat"
	IconWaterTanker IconKey = "water_tanker"
)

// Personnel
const (
	IconFirefighter   IconKey = "firefighter"
	IconParamedic     IconKey = "paramedic"
	IconPoliceOfficer IconKey = "police_officer"
	IconRescueTeam    IconKey = "rescue_team"
	IconVolunteer     IconKey = "volunteer"
)

// Equipment
const (
	IconWaterPump IconKey = "water_pump"
	IconGenerator IconKey = "generator"
	IconHose      IconKey = "hose"
	IconLadder    IconKey = "ladder"
)

// Facilities
const (
	IconCommandPost IconKey = "command_post"
	IconHospital    IconKey = "hospital"
	IconShelter     IconKey = "shelter"
	IconWaterPoint  IconKey = "water_point"
)

// Alerts
const (
	IconFire       IconKey = "fire"
	IconDanger     IconKey = "danger"
	IconEvacuation IconKey = "evacuation"
)
