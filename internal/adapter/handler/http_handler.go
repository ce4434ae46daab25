package handler

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/service"
	"github.com/rl1809/scoop-shop/internal/core/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreInfo is the shop's address for the contacts page. The map itself is
// drawn by the external map widget from these coordinates.
type StoreInfo struct {
	Name    string
	Address string
	Lat     float64
	Lon     float64
}

type Options struct {
	CookieSecure   bool
	RequestTimeout time.Duration
	Store          StoreInfo
	// ImagesDir holds the product pictures served under /images/. Empty
	// disables the route.
	ImagesDir string
}

type HTTPHandler struct {
	cart     *service.CartService
	checkout *service.CheckoutService
	health   Pinger
	pages    *template.Template
	opts     Options
	log      *zap.Logger
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewHTTPHandler(cart *service.CartService, checkout *service.CheckoutService, health Pinger, opts Options, log *zap.Logger) (*HTTPHandler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.Store.Name == "" {
		opts.Store.Name = "Ice Cream Shop"
	}

	pages, err := template.New("pages").
		Funcs(template.FuncMap{"money": view.Money}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cart:     cart,
		checkout: checkout,
		health:   health,
		pages:    pages,
		opts:     opts,
		log:      log,
	}, nil
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.opts.RequestTimeout))

	r.Get("/health", h.HealthCheck)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/css/*", http.FileServerFS(static))
	if h.opts.ImagesDir != "" {
		r.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(h.opts.ImagesDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(h.opts.CookieSecure))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		})
		r.Get("/catalog", h.CatalogPage)
		r.Get("/contacts", h.ContactsPage)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.CartPanel)
			r.Post("/items", h.AddItem)
			r.Post("/drop", h.DropItem)
			r.Post("/items/{product_id}/remove", h.RemoveItem)
			r.Post("/items/{product_id}/quantity", h.ChangeQuantity)
			r.Post("/clear", h.ClearCart)
			r.Post("/checkout", h.Checkout)
		})

		r.Get("/payment", h.PaymentPage)
		r.Post("/payment/confirm", h.ConfirmPayment)

		r.Get("/register", h.RegisterPage)
		r.Post("/register", h.Register)
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Error(op,
		zap.String("session_id", SessionID(r.Context())),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeJSON(w, status, errorResponse{Success: false, Message: message})
		return
	}
	http.Error(w, message, status)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
