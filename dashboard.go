package backoffice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DashboardRouter exposes the CRUD screens' data as a thin JSON passthrough
// to the remote API. Mount it behind RequireSession; every call goes out
// with the session's bearer token, and a 401 from the remote side ends the
// session for all screens at once. Remote failures surface as errors rather
// than canned fallback data.
func (s *Service) DashboardRouter() chi.Router {
	r := chi.NewRouter()

	r.Route("/hotels", func(r chi.Router) {
		r.Get("/", s.listHotels)
		r.Post("/", s.createHotel)
		r.Get("/{id}", s.getHotel)
		r.Put("/{id}", s.updateHotel)
		r.Delete("/{id}", s.deleteHotel)
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.listRooms)
		r.Post("/", s.createRoom)
		r.Get("/{id}", s.getRoom)
		r.Put("/{id}", s.updateRoom)
		r.Delete("/{id}", s.deleteRoom)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", s.listBookings)
		r.Post("/", s.createBooking)
		r.Get("/{id}", s.getBooking)
		r.Put("/{id}", s.updateBooking)
		r.Delete("/{id}", s.deleteBooking)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Post("/", s.createUser)
		r.Get("/{id}", s.getUser)
		r.Put("/{id}", s.updateUser)
		r.Delete("/{id}", s.deleteUser)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func writeRemoteError(w http.ResponseWriter, err error) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Message})
	case errors.Is(err, ErrConnection):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": ErrConnection.Error()})
	default:
		slog.Error("Dashboard request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// Hotels.

func (s *Service) listHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := s.Client.Hotels(r.Context())
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotels)
}

func (s *Service) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := s.Client.Hotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (s *Service) createHotel(w http.ResponseWriter, r *http.Request) {
	var hotel Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := s.Client.CreateHotel(r.Context(), hotel)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) updateHotel(w http.ResponseWriter, r *http.Request) {
	var hotel Hotel
	if err := json.NewDecoder(r.Body).Decode(&hotel); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	updated, err := s.Client.UpdateHotel(r.Context(), chi.URLParam(r, "id"), hotel)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) deleteHotel(w http.ResponseWriter, r *http.Request) {
	if err := s.Client.DeleteHotel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Rooms.

func (s *Service) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.Client.Rooms(r.Context())
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Service) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.Client.Room(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Service) createRoom(w http.ResponseWriter, r *http.Request) {
	var room Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := s.Client.CreateRoom(r.Context(), room)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) updateRoom(w http.ResponseWriter, r *http.Request) {
	var room Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	updated, err := s.Client.UpdateRoom(r.Context(), chi.URLParam(r, "id"), room)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.Client.DeleteRoom(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Bookings.

func (s *Service) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.Client.Bookings(r.Context())
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Service) getBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.Client.Booking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Service) createBooking(w http.ResponseWriter, r *http.Request) {
	var booking Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := s.Client.CreateBooking(r.Context(), booking)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) updateBooking(w http.ResponseWriter, r *http.Request) {
	var booking Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	updated, err := s.Client.UpdateBooking(r.Context(), chi.URLParam(r, "id"), booking)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) deleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.Client.DeleteBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Users.

func (s *Service) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Client.Users(r.Context())
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Service) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.Client.UserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Service) createUser(w http.ResponseWriter, r *http.Request) {
	var user User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := s.Client.CreateUser(r.Context(), user)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Service) updateUser(w http.ResponseWriter, r *http.Request) {
	var user User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	updated, err := s.Client.UpdateUser(r.Context(), chi.URLParam(r, "id"), user)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Service) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.Client.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
