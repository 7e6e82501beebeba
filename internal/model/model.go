package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Incident{},
	&Drawing{},
	&DrawingState{},
}

// Incident groups the drawings of one operation
type Incident struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Name      string    `json:"name" gorm:"size:128;uniqueIndex:idx_incident_name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (*Incident) TableName() string {
	return "incidents"
}

// Drawing is a committed annotation. The geometry is stored as WKB with X as
// longitude and Y as latitude; kinds without a native OGC shape keep their
// extra data in dedicated columns.
type Drawing struct {
	ID         string   `json:"id" gorm:"primarykey;size:64"`
	IncidentID uint     `json:"incidentId" gorm:"index:idx_drawing_incident_id"`
	Incident   Incident `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:IncidentID;"`
	Position   int      `json:"position"` // order within the incident collection

	Kind         string  `json:"kind" gorm:"size:16"`
	Geometry     []byte  `json:"geometry"`            // WKB
	RadiusMeters float64 `json:"radiusMeters"`        // circles only
	Icon         string  `json:"icon" gorm:"size:32"` // icon markers only

	Name          string `json:"name" gorm:"size:256"`
	Category      string `json:"category" gorm:"size:32"`
	Description   string `json:"description"`
	ResourcesNote string `json:"resourcesNote"`
	Priority      string `json:"priority" gorm:"size:16"`
	Color         string `json:"color" gorm:"size:16"`
	ResourceID    string `json:"resourceId" gorm:"size:64;index:idx_drawing_resource_id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (*Drawing) TableName() string {
	return "drawings"
}

// DrawingState is one entry of the change history of an incident. Snapshot
// holds the drawing as it was after the change; deletes keep the last value.
type DrawingState struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time `json:"time"`
	IncidentID uint      `json:"incidentId" gorm:"index:idx_drawingstate_incident_id"`
	Incident   Incident  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:IncidentID;"`
	Revision   int       `json:"revision" gorm:"index:idx_drawingstate_revision"`

	Action    string         `json:"action" gorm:"size:16"`
	DrawingID string         `json:"drawingId" gorm:"size:64;index:idx_drawingstate_drawing_id"`
	Snapshot  datatypes.JSON `json:"snapshot"`
}

func (*DrawingState) TableName() string {
	return "drawing_states"
}
