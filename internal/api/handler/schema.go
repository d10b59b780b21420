package handler

import (
	"time"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type dataResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// --- Users ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Phone    string `json:"phone"    validate:"required,bt_phone"`
	CID      string `json:"cid"      validate:"required,cid"`
	Role     string `json:"role"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required,bt_identifier"`
	Password   string `json:"password"   validate:"required"`
}

type updateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Phone *string `json:"phone" validate:"omitempty,bt_phone"`
	CID   *string `json:"cid"   validate:"omitempty,cid"`
	Role  *string `json:"role"`
}

// userView is an identity without its credential.
type userView struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone"`
	CID       string      `json:"cid"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type loginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	Data    userView `json:"data"`
}

// --- Geography ---

type coordinatesRequest struct {
	Latitude  float64 `json:"latitude"  validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type createDzongkhagRequest struct {
	Name           string              `json:"name"           validate:"required"`
	NameInDzongkha string              `json:"nameInDzongkha"`
	Code           string              `json:"code"           validate:"required"`
	Region         string              `json:"region"         validate:"required,oneof=western central eastern southern"`
	Area           float64             `json:"area"           validate:"gte=0"`
	Population     int64               `json:"population"     validate:"gte=0"`
	Coordinates    *coordinatesRequest `json:"coordinates"`
}

type updateDzongkhagRequest struct {
	Name           *string             `json:"name"           validate:"omitempty,min=1"`
	NameInDzongkha *string             `json:"nameInDzongkha"`
	Code           *string             `json:"code"           validate:"omitempty,min=1"`
	Region         *string             `json:"region"         validate:"omitempty,oneof=western central eastern southern"`
	Area           *float64            `json:"area"           validate:"omitempty,gte=0"`
	Population     *int64              `json:"population"     validate:"omitempty,gte=0"`
	Coordinates    *coordinatesRequest `json:"coordinates"`
}

type createGewogRequest struct {
	Name           string              `json:"name"           validate:"required"`
	NameInDzongkha string              `json:"nameInDzongkha"`
	Dzongkhag      string              `json:"dzongkhag"      validate:"required,objectid"`
	Area           float64             `json:"area"           validate:"gte=0"`
	Population     int64               `json:"population"     validate:"gte=0"`
	Coordinates    *coordinatesRequest `json:"coordinates"`
}

type updateGewogRequest struct {
	Name           *string             `json:"name"           validate:"omitempty,min=1"`
	NameInDzongkha *string             `json:"nameInDzongkha"`
	Dzongkhag      *string             `json:"dzongkhag"      validate:"omitempty,objectid"`
	Area           *float64            `json:"area"           validate:"omitempty,gte=0"`
	Population     *int64              `json:"population"     validate:"omitempty,gte=0"`
	Coordinates    *coordinatesRequest `json:"coordinates"`
}

type listGewogsQuery struct {
	Dzongkhag string `query:"dzongkhag" validate:"omitempty,objectid"`
}

// --- Consumers ---

type addressRequest struct {
	Gewog       string `json:"gewog"       validate:"required,objectid"`
	Village     string `json:"village"     validate:"required"`
	HouseNumber string `json:"houseNumber" validate:"required"`
}

type createConsumerRequest struct {
	HouseholdID    string         `json:"householdId"    validate:"required"`
	HouseholdHead  string         `json:"householdHead"  validate:"required,objectid"`
	Address        addressRequest `json:"address"`
	FamilySize     int            `json:"familySize"     validate:"required,gte=1"`
	ConnectionType string         `json:"connectionType" validate:"required,oneof=domestic commercial institutional industrial"`
	MeterNumber    string         `json:"meterNumber"    validate:"required"`
	ConnectionDate time.Time      `json:"connectionDate" validate:"required"`
	Status         string         `json:"status"         validate:"required,oneof=active inactive suspended disconnected"`
	TariffCategory string         `json:"tariffCategory" validate:"required,oneof=lifeline domestic commercial institutional industrial"`
}

type addressPatchRequest struct {
	Gewog       *string `json:"gewog"       validate:"omitempty,objectid"`
	Village     *string `json:"village"     validate:"omitempty,min=1"`
	HouseNumber *string `json:"houseNumber" validate:"omitempty,min=1"`
}

type updateConsumerRequest struct {
	HouseholdID    *string              `json:"householdId"    validate:"omitempty,min=1"`
	HouseholdHead  *string              `json:"householdHead"  validate:"omitempty,objectid"`
	Address        *addressPatchRequest `json:"address"`
	FamilySize     *int                 `json:"familySize"     validate:"omitempty,gte=1"`
	ConnectionType *string              `json:"connectionType" validate:"omitempty,oneof=domestic commercial institutional industrial"`
	MeterNumber    *string              `json:"meterNumber"    validate:"omitempty,min=1"`
	ConnectionDate *time.Time           `json:"connectionDate"`
	Status         *string              `json:"status"         validate:"omitempty,oneof=active inactive suspended disconnected"`
	TariffCategory *string              `json:"tariffCategory" validate:"omitempty,oneof=lifeline domestic commercial institutional industrial"`
}

type listConsumersQuery struct {
	Page           int    `query:"page"`
	Limit          int    `query:"limit"`
	Search         string `query:"search"`
	Gewog          string `query:"gewog"          validate:"omitempty,objectid"`
	Status         string `query:"status"`
	TariffCategory string `query:"tariffCategory"`
	SortBy         string `query:"sortBy"`
	Order          string `query:"order"          validate:"omitempty,oneof=asc desc ASC DESC"`
}

type pageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type listConsumersResponse struct {
	Data []*domain.Consumer `json:"data"`
	Meta pageMeta           `json:"meta"`
}
