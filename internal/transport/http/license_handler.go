package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"dropvoxsite/internal/license"
)

// LicenseHandler serves the desktop client's license validation endpoint.
type LicenseHandler struct {
	service  LicenseService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewLicenseHandler creates a license handler.
func NewLicenseHandler(service LicenseService, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With(slog.String("handler", "license")),
	}
}

// Routes returns a chi router for license endpoints.
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/validate", h.Validate)
	return r
}

// ValidateRequest is the desktop client's validation payload.
type ValidateRequest struct {
	LicenseKey  string `json:"license_key" validate:"required"`
	MachineID   string `json:"machine_id" validate:"required"`
	MachineName string `json:"machine_name,omitempty"`
	OSVersion   string `json:"os_version,omitempty"`
	AppVersion  string `json:"app_version"`
}

// validateSuccess is the response for an authorized machine. ExpiresAt is
// always null: licenses are perpetual per major version.
type validateSuccess struct {
	Valid        bool       `json:"valid"`
	Email        string     `json:"email"`
	MajorVersion int        `json:"major_version"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// validateFailure carries the validity flag plus a discriminator so the
// client can render upgrade-required vs machine-limit vs generic-invalid
// messaging distinctly, without inferring from the status code.
type validateFailure struct {
	Valid               bool   `json:"valid"`
	Error               string `json:"error"`
	UpgradeRequired     bool   `json:"upgrade_required,omitempty"`
	LicensedVersion     int    `json:"licensed_version,omitempty"`
	MachineLimitReached bool   `json:"machine_limit_reached,omitempty"`
}

// Validate handles POST /api/license/validate.
func (h *LicenseHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ValidateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validateFailure{Error: "Missing required fields"})
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validateFailure{Error: "Missing required fields"})
		return
	}

	result, err := h.service.Validate(ctx, license.ValidateParams{
		LicenseKey:  req.LicenseKey,
		MachineID:   req.MachineID,
		MachineName: req.MachineName,
		OSVersion:   req.OSVersion,
		AppVersion:  req.AppVersion,
	})
	if err != nil {
		h.renderValidationError(w, r, err)
		return
	}

	render.JSON(w, r, validateSuccess{
		Valid:        true,
		Email:        result.Email,
		MajorVersion: result.MajorVersion,
		ExpiresAt:    nil,
	})
}

func (h *LicenseHandler) renderValidationError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var upgradeErr *license.UpgradeRequiredError

	switch {
	case errors.Is(err, license.ErrLicenseNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, validateFailure{Error: "Invalid license key"})

	case errors.As(err, &upgradeErr):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, validateFailure{
			Error:           "License not valid for this version",
			UpgradeRequired: true,
			LicensedVersion: upgradeErr.LicensedVersion,
		})

	case errors.Is(err, license.ErrMachineLimitReached):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, validateFailure{
			Error:               "Maximum 3 machines reached. Deactivate a machine first.",
			MachineLimitReached: true,
		})

	default:
		h.logger.ErrorContext(ctx, "license validation failed",
			slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, validateFailure{Error: "Validation failed"})
	}
}
