package server

import (
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"net/http"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(s.loggingMw)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/items", s.itemsGet()).Methods(http.MethodGet)
	api.HandleFunc("/invoices", s.invoicesGet()).Methods(http.MethodGet)
	api.Handle("/upload", s.maxBytesMw(s.upload())).Methods(http.MethodPost)

	return r
}
