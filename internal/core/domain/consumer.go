package domain

import "time"

type ConnectionType string

const (
	ConnectionDomestic      ConnectionType = "domestic"
	ConnectionCommercial    ConnectionType = "commercial"
	ConnectionInstitutional ConnectionType = "institutional"
	ConnectionIndustrial    ConnectionType = "industrial"
)

func (c ConnectionType) Valid() bool {
	switch c {
	case ConnectionDomestic, ConnectionCommercial, ConnectionInstitutional, ConnectionIndustrial:
		return true
	}
	return false
}

type ConsumerStatus string

const (
	ConsumerActive       ConsumerStatus = "active"
	ConsumerInactive     ConsumerStatus = "inactive"
	ConsumerSuspended    ConsumerStatus = "suspended"
	ConsumerDisconnected ConsumerStatus = "disconnected"
)

func (s ConsumerStatus) Valid() bool {
	switch s {
	case ConsumerActive, ConsumerInactive, ConsumerSuspended, ConsumerDisconnected:
		return true
	}
	return false
}

type TariffCategory string

const (
	TariffLifeline      TariffCategory = "lifeline"
	TariffDomestic      TariffCategory = "domestic"
	TariffCommercial    TariffCategory = "commercial"
	TariffInstitutional TariffCategory = "institutional"
	TariffIndustrial    TariffCategory = "industrial"
)

func (t TariffCategory) Valid() bool {
	switch t {
	case TariffLifeline, TariffDomestic, TariffCommercial, TariffInstitutional, TariffIndustrial:
		return true
	}
	return false
}

// HouseholdHead is the populated view of the identity heading a household.
type HouseholdHead struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	CID   string `json:"cid"`
	Phone string `json:"phone"`
}

// GewogRef is the populated view of a consumer's gewog.
type GewogRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NameInDzongkha string `json:"nameInDzongkha,omitempty"`
}

// ConsumerAddress locates a household.
type ConsumerAddress struct {
	GewogID     string    `json:"gewogId"`
	Gewog       *GewogRef `json:"gewog,omitempty"`
	Village     string    `json:"village"`
	HouseNumber string    `json:"houseNumber"`
}

// Consumer is a household-level utility service connection.
type Consumer struct {
	ID              string          `json:"id"`
	HouseholdID     string          `json:"householdId"`
	HouseholdHeadID string          `json:"householdHeadId"`
	HouseholdHead   *HouseholdHead  `json:"householdHead,omitempty"`
	Address         ConsumerAddress `json:"address"`
	FamilySize      int             `json:"familySize"`
	ConnectionType  ConnectionType  `json:"connectionType"`
	MeterNumber     string          `json:"meterNumber"`
	ConnectionDate  time.Time       `json:"connectionDate"`
	Status          ConsumerStatus  `json:"status"`
	TariffCategory  TariffCategory  `json:"tariffCategory"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ConsumerPatch carries a partial consumer update.
type ConsumerPatch struct {
	HouseholdID     *string
	HouseholdHeadID *string
	GewogID         *string
	Village         *string
	HouseNumber     *string
	FamilySize      *int
	ConnectionType  *ConnectionType
	MeterNumber     *string
	ConnectionDate  *time.Time
	Status          *ConsumerStatus
	TariffCategory  *TariffCategory
}

// AuditAction names the kind of write recorded in the audit trail.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry records one successful write.
type AuditEntry struct {
	ActorID  string
	Action   AuditAction
	Entity   string
	EntityID string
	At       time.Time
}
