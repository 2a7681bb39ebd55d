package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Dhairyashah5122/project-hotelrover/internal/domain"
)

type createHotelRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	TotalRooms int    `json:"totalRooms"`
}

// CreateHotel handles POST /api/v1/hotels.
func (h *REST) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var req createHotelRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, r, &domain.InvalidInputError{Field: "name", Reason: "is required"})
		return
	}
	if req.TotalRooms < 0 {
		h.writeError(w, r, &domain.InvalidInputError{Field: "totalRooms", Reason: "must not be negative"})
		return
	}

	hotel := &domain.Hotel{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Address:    req.Address,
		TotalRooms: req.TotalRooms,
		CreatedAt:  h.now().UTC(),
	}
	if err := h.entities.CreateHotel(r.Context(), hotel); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}

// GetHotel handles GET /api/v1/hotels/{id}.
func (h *REST) GetHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.entities.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

type createRoomRequest struct {
	HotelID string `json:"hotelId"`
	Number  string `json:"number"`
	Type    string `json:"type"`
	Floor   int    `json:"floor"`
}

// CreateRoom handles POST /api/v1/rooms. The hotel must exist.
func (h *REST) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Number) == "" {
		h.writeError(w, r, &domain.InvalidInputError{Field: "number", Reason: "is required"})
		return
	}
	if _, err := h.entities.GetHotel(r.Context(), req.HotelID); err != nil {
		h.writeError(w, r, err)
		return
	}

	room := &domain.Room{
		ID:        uuid.New().String(),
		HotelID:   req.HotelID,
		Number:    req.Number,
		Type:      req.Type,
		Floor:     req.Floor,
		CreatedAt: h.now().UTC(),
	}
	if err := h.entities.CreateRoom(r.Context(), room); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// GetRoom handles GET /api/v1/rooms/{id}.
func (h *REST) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.entities.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// ListRooms handles GET /api/v1/hotels/{id}/rooms.
func (h *REST) ListRooms(w http.ResponseWriter, r *http.Request) {
	hotelID := chi.URLParam(r, "id")
	if _, err := h.entities.GetHotel(r.Context(), hotelID); err != nil {
		h.writeError(w, r, err)
		return
	}
	rooms, err := h.entities.ListRooms(r.Context(), hotelID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

type createHousekeeperRequest struct {
	HotelID  string `json:"hotelId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive *bool  `json:"isActive"`
}

// CreateHousekeeper handles POST /api/v1/housekeepers. isActive defaults to true.
func (h *REST) CreateHousekeeper(w http.ResponseWriter, r *http.Request) {
	var req createHousekeeperRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.writeError(w, r, &domain.InvalidInputError{Field: "name", Reason: "is required"})
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		h.writeError(w, r, &domain.InvalidInputError{Field: "email", Reason: "is not an email address"})
		return
	}
	if _, err := h.entities.GetHotel(r.Context(), req.HotelID); err != nil {
		h.writeError(w, r, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	hk := &domain.Housekeeper{
		ID:        uuid.New().String(),
		HotelID:   req.HotelID,
		Name:      req.Name,
		Email:     req.Email,
		IsActive:  active,
		CreatedAt: h.now().UTC(),
	}
	if err := h.entities.CreateHousekeeper(r.Context(), hk); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hk)
}

// GetHousekeeper handles GET /api/v1/housekeepers/{id}.
func (h *REST) GetHousekeeper(w http.ResponseWriter, r *http.Request) {
	hk, err := h.entities.GetHousekeeper(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hk)
}

// ListHousekeepers handles GET /api/v1/housekeepers?hotelId= and
// GET /api/v1/hotels/{id}/housekeepers.
func (h *REST) ListHousekeepers(w http.ResponseWriter, r *http.Request) {
	hotelID := chi.URLParam(r, "id")
	if hotelID == "" {
		hotelID = r.URL.Query().Get("hotelId")
	}
	if hotelID != "" {
		if _, err := h.entities.GetHotel(r.Context(), hotelID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	list, err := h.entities.ListHousekeepers(r.Context(), hotelID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*domain.Housekeeper{}
	}
	writeJSON(w, http.StatusOK, list)
}
