package server

import "net/http"

func (s Server) invoicesGet() http.HandlerFunc {
	type invoice struct {
		ItemID    string `json:"itemID"`
		Quantity  int    `json:"quantity"`
		Timestamp string `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		invs, err := s.DB.InvoicesFindAll(r.Context())
		if err != nil {
			s.Logger.Errorf("invoicesGet: Error getting all Invoices, err: %v", err)
			s.writeJsonResponse(w, errorResponse{Error: "Error getting invoices"}, http.StatusInternalServerError)
			return
		}

		resp := make([]invoice, 0, len(invs))
		for _, inv := range invs {
			resp = append(resp, invoice{
				ItemID:    inv.ItemID,
				Quantity:  inv.Quantity,
				Timestamp: inv.TimestampISO(),
			})
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}
