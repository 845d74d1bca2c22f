package server

import "net/http"

func (s Server) itemsGet() http.HandlerFunc {
	type item struct {
		ItemID   string `json:"itemID"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		is, err := s.DB.ItemsFindAll(r.Context())
		if err != nil {
			s.Logger.Errorf("itemsGet: Error getting all Items, err: %v", err)
			s.writeJsonResponse(w, errorResponse{Error: "Error getting items"}, http.StatusInternalServerError)
			return
		}

		resp := make([]item, 0, len(is))
		for _, i := range is {
			resp = append(resp, item{
				ItemID:   i.ItemID,
				Name:     i.Name,
				Quantity: i.Quantity,
			})
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}
