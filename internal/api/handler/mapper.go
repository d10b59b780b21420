package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

func toUserView(i *domain.Identity) userView {
	return userView{
		ID:        i.ID,
		Name:      i.Name,
		Phone:     i.Phone,
		CID:       i.CID,
		Role:      i.Role,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

func toUserViews(in []*domain.Identity) []userView {
	out := make([]userView, 0, len(in))
	for _, i := range in {
		out = append(out, toUserView(i))
	}
	return out
}

// bindAndValidate binds the body into req and runs the registered validator.
// Bind failures are 400, validation failures 422.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// pathID returns the :id parameter, rejecting anything that is not an
// ObjectID hex string.
func pathID(c echo.Context) (string, error) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func toRegisterInput(r registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Name:     r.Name,
		Phone:    r.Phone,
		CID:      r.CID,
		Role:     r.Role,
		Password: r.Password,
	}
}

func toIdentityPatch(r updateUserRequest) domain.IdentityPatch {
	p := domain.IdentityPatch{Name: r.Name, Phone: r.Phone, CID: r.CID}
	if r.Role != nil {
		role := domain.Role(strings.TrimSpace(*r.Role))
		p.Role = &role
	}
	return p
}

func toCoordinates(r *coordinatesRequest) *domain.Coordinates {
	if r == nil {
		return nil
	}
	return &domain.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

func toDzongkhag(r createDzongkhagRequest) *domain.Dzongkhag {
	return &domain.Dzongkhag{
		Name:           r.Name,
		NameInDzongkha: r.NameInDzongkha,
		Code:           r.Code,
		Region:         domain.Region(r.Region),
		Area:           r.Area,
		Population:     r.Population,
		Coordinates:    toCoordinates(r.Coordinates),
	}
}

func toDzongkhagPatch(r updateDzongkhagRequest) domain.DzongkhagPatch {
	p := domain.DzongkhagPatch{
		Name:           r.Name,
		NameInDzongkha: r.NameInDzongkha,
		Code:           r.Code,
		Area:           r.Area,
		Population:     r.Population,
		Coordinates:    toCoordinates(r.Coordinates),
	}
	if r.Region != nil {
		region := domain.Region(*r.Region)
		p.Region = &region
	}
	return p
}

func toGewog(r createGewogRequest) *domain.Gewog {
	return &domain.Gewog{
		Name:           r.Name,
		NameInDzongkha: r.NameInDzongkha,
		DzongkhagID:    r.Dzongkhag,
		Area:           r.Area,
		Population:     r.Population,
		Coordinates:    toCoordinates(r.Coordinates),
	}
}

func toGewogPatch(r updateGewogRequest) domain.GewogPatch {
	return domain.GewogPatch{
		Name:           r.Name,
		NameInDzongkha: r.NameInDzongkha,
		DzongkhagID:    r.Dzongkhag,
		Area:           r.Area,
		Population:     r.Population,
		Coordinates:    toCoordinates(r.Coordinates),
	}
}

func toConsumer(r createConsumerRequest) *domain.Consumer {
	return &domain.Consumer{
		HouseholdID:     r.HouseholdID,
		HouseholdHeadID: r.HouseholdHead,
		Address: domain.ConsumerAddress{
			GewogID:     r.Address.Gewog,
			Village:     r.Address.Village,
			HouseNumber: r.Address.HouseNumber,
		},
		FamilySize:     r.FamilySize,
		ConnectionType: domain.ConnectionType(r.ConnectionType),
		MeterNumber:    r.MeterNumber,
		ConnectionDate: r.ConnectionDate,
		Status:         domain.ConsumerStatus(r.Status),
		TariffCategory: domain.TariffCategory(r.TariffCategory),
	}
}

func toConsumerPatch(r updateConsumerRequest) domain.ConsumerPatch {
	p := domain.ConsumerPatch{
		HouseholdID:     r.HouseholdID,
		HouseholdHeadID: r.HouseholdHead,
		FamilySize:      r.FamilySize,
		MeterNumber:     r.MeterNumber,
		ConnectionDate:  r.ConnectionDate,
	}
	if r.Address != nil {
		p.GewogID = r.Address.Gewog
		p.Village = r.Address.Village
		p.HouseNumber = r.Address.HouseNumber
	}
	if r.ConnectionType != nil {
		v := domain.ConnectionType(*r.ConnectionType)
		p.ConnectionType = &v
	}
	if r.Status != nil {
		v := domain.ConsumerStatus(*r.Status)
		p.Status = &v
	}
	if r.TariffCategory != nil {
		v := domain.TariffCategory(*r.TariffCategory)
		p.TariffCategory = &v
	}
	return p
}

func toListConsumersInput(q listConsumersQuery) ports.ListConsumersInput {
	return ports.ListConsumersInput{
		GewogID:        q.Gewog,
		Status:         q.Status,
		TariffCategory: q.TariffCategory,
		Search:         q.Search,
		SortBy:         q.SortBy,
		Order:          q.Order,
		Page:           q.Page,
		Limit:          q.Limit,
	}
}
