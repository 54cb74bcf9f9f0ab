package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/device"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/interactions"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/locator"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/mapview"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/pill"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/prescription"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/search"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/session"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/symptoms"
	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/config"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	cfg             *config.Config
	deviceSvc       device.Service
	sessions        *session.Manager
	prescriptionSvc prescription.Service
	searchSvc       search.Service
	locatorSvc      locator.Service
	interactionsSvc interactions.Service
	pillSvc         pill.Service
	symptomsSvc     symptoms.Service
	mapLoader       *mapview.Loader
	logger          *slog.Logger

	mapMu   sync.Mutex
	mapByID map[string]*deviceMap
}

type deviceMap struct {
	widget     *mapview.StateWidget
	reconciler *mapview.Reconciler
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	cfg *config.Config,
	deviceSvc device.Service,
	sessions *session.Manager,
	prescriptionSvc prescription.Service,
	searchSvc search.Service,
	locatorSvc locator.Service,
	interactionsSvc interactions.Service,
	pillSvc pill.Service,
	symptomsSvc symptoms.Service,
	mapLoader *mapview.Loader,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cfg:             cfg,
		deviceSvc:       deviceSvc,
		sessions:        sessions,
		prescriptionSvc: prescriptionSvc,
		searchSvc:       searchSvc,
		locatorSvc:      locatorSvc,
		interactionsSvc: interactionsSvc,
		pillSvc:         pillSvc,
		symptomsSvc:     symptomsSvc,
		mapLoader:       mapLoader,
		logger:          logger.With("component", "http.handler"),
		mapByID:         make(map[string]*deviceMap),
	}
}

// RegisterDevice enrolls an anonymous device and returns its bearer token.
func (h *Handler) RegisterDevice(c *gin.Context) {
	reg, err := h.deviceSvc.Register()
	if err != nil {
		abortWithError(c, httpErrorFor("device_register_failed", err))
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// AnalyzePrescription runs the full upload-then-alternatives flow on a
// prescription photo.
func (h *Handler) AnalyzePrescription(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeaturePrescription)

	gen, err := machine.Begin(session.PhaseUploading)
	if err != nil {
		abortWithError(c, httpErrorFor("prescription_busy", err))
		return
	}

	image, mimeType, err := h.readImageUpload(c)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("invalid_upload", err))
		return
	}

	machine.Advance(gen, session.PhaseAnalyzing)
	result, err := h.prescriptionSvc.AnalyzePrescription(c.Request.Context(), image, mimeType, func() {
		machine.Advance(gen, session.PhaseFetching)
	})
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("prescription_failed", err))
		return
	}

	machine.Complete(gen)

	handoff := make([]prescription.Medicine, 0, len(result.Medicines))
	for _, analyzed := range result.Medicines {
		handoff = append(handoff, analyzed.BrandedMedicine)
	}
	h.sessions.StoreHandoff(claims.DeviceID, handoff)

	c.JSON(http.StatusOK, result)
}

type alternativesRequest struct {
	Medicines []string `json:"medicines"`
}

// FindAlternatives looks up generic alternatives for a typed-in medicine list.
func (h *Handler) FindAlternatives(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeatureAlternatives)

	var req alternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	gen, err := machine.Begin(session.PhaseAnalyzing)
	if err != nil {
		abortWithError(c, httpErrorFor("alternatives_busy", err))
		return
	}

	analyses, err := h.prescriptionSvc.FindAlternatives(c.Request.Context(), req.Medicines)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("alternatives_failed", err))
		return
	}
	machine.Complete(gen)

	c.JSON(http.StatusOK, gin.H{"results": analyses})
}

// SearchMedicine answers a grounded medicine search query.
func (h *Handler) SearchMedicine(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeatureSearch)

	query := c.Query("q")

	gen, err := machine.Begin(session.PhaseAnalyzing)
	if err != nil {
		abortWithError(c, httpErrorFor("search_busy", err))
		return
	}

	result, found, err := h.searchSvc.Search(c.Request.Context(), query)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("search_failed", err))
		return
	}
	if !found {
		machine.Fail(gen, "no results were found")
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound,
			"No results were found. Please check the spelling of the medicine name.", nil))
		return
	}
	machine.Complete(gen)

	c.JSON(http.StatusOK, result)
}

// TrendingSearches returns the most frequent medicine queries.
func (h *Handler) TrendingSearches(c *gin.Context) {
	items, err := h.searchSvc.Trending(c.Request.Context())
	if err != nil {
		abortWithError(c, httpErrorFor("trending_failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"trending": items})
}

// SearchPharmacies locates nearby pharmacies by coordinates or place query.
func (h *Handler) SearchPharmacies(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeatureLocator)

	var query locator.LocationQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	gen, err := machine.Begin(session.PhaseAnalyzing)
	if err != nil {
		abortWithError(c, httpErrorFor("locator_busy", err))
		return
	}

	pharmacies, err := h.locatorSvc.FindPharmacies(c.Request.Context(), query)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("locator_failed", err))
		return
	}
	machine.Complete(gen)

	c.JSON(http.StatusOK, gin.H{"pharmacies": pharmacies})
}

// ListFavorites returns the device's favorited pharmacies.
func (h *Handler) ListFavorites(c *gin.Context) {
	claims, _ := getClaims(c)
	favorites, err := h.locatorSvc.ListFavorites(c.Request.Context(), claims.DeviceID)
	if err != nil {
		abortWithError(c, httpErrorFor("favorites_failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// ToggleFavorite flips membership of a pharmacy in the device's favorites.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	claims, _ := getClaims(c)

	var pharmacy locator.Pharmacy
	if err := c.ShouldBindJSON(&pharmacy); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	favorited, err := h.locatorSvc.ToggleFavorite(c.Request.Context(), claims.DeviceID, pharmacy)
	if err != nil {
		abortWithError(c, httpErrorFor("favorites_failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited, "id": pharmacy.ID()})
}

type mapSyncRequest struct {
	Pharmacies   []locator.Pharmacy `json:"pharmacies"`
	UserLocation *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"userLocation,omitempty"`
	Select   string `json:"select,omitempty"`
	Deselect bool   `json:"deselect,omitempty"`
}

// SyncMap reconciles the device's map markers against a result set and
// returns the resulting view state.
func (h *Handler) SyncMap(c *gin.Context) {
	claims, _ := getClaims(c)

	var req mapSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	dm, err := h.deviceMapFor(claims.DeviceID)
	if err != nil {
		abortWithError(c, httpErrorFor("map_unavailable", err))
		return
	}

	if req.Pharmacies != nil {
		if err := dm.reconciler.Sync(req.Pharmacies); err != nil {
			abortWithError(c, httpErrorFor("map_sync_failed", err))
			return
		}
	}
	switch {
	case req.UserLocation != nil:
		dm.widget.PanTo(req.UserLocation.Latitude, req.UserLocation.Longitude)
		dm.widget.SetZoom(h.cfg.Locator.LocatedZoom)
	case len(req.Pharmacies) > 0:
		// No user position: center on the first result that has coordinates.
		for _, p := range req.Pharmacies {
			if p.HasCoordinates() {
				dm.widget.PanTo(*p.Latitude, *p.Longitude)
				dm.widget.SetZoom(h.cfg.Locator.LocatedZoom)
				break
			}
		}
	}
	if req.Deselect {
		dm.reconciler.Deselect()
	}
	if req.Select != "" {
		if err := dm.reconciler.Select(req.Select); err != nil {
			abortWithError(c, httpErrorFor("map_select_failed", err))
			return
		}
	}

	c.JSON(http.StatusOK, dm.widget.Snapshot())
}

// MapConfig reports the initial viewport and interaction tuning for clients.
func (h *Handler) MapConfig(c *gin.Context) {
	if _, err := h.mapLoader.Load(); err != nil {
		abortWithError(c, httpErrorFor("map_unavailable", err))
		return
	}
	cfg := h.cfg.Locator
	c.JSON(http.StatusOK, gin.H{
		"defaultLatitude":  cfg.DefaultLatitude,
		"defaultLongitude": cfg.DefaultLongitude,
		"defaultZoom":      cfg.DefaultZoom,
		"locatedZoom":      cfg.LocatedZoom,
		"selectionZoom":    cfg.SelectionZoom,
		"highlightMs":      cfg.HighlightDuration.Milliseconds(),
	})
}

type interactionsRequest struct {
	Medicines []string `json:"medicines"`
}

// CheckInteractions analyzes a medicine list for pairwise interactions.
func (h *Handler) CheckInteractions(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeatureInteractions)

	var req interactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	gen, err := machine.Begin(session.PhaseValidating)
	if err != nil {
		abortWithError(c, httpErrorFor("interactions_busy", err))
		return
	}

	analysis, err := h.interactionsSvc.Check(c.Request.Context(), req.Medicines)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("interactions_failed", err))
		return
	}
	machine.Advance(gen, session.PhaseAnalyzing)
	machine.Complete(gen)

	c.JSON(http.StatusOK, analysis)
}

// IdentifyPill identifies a medicine from a pill photo.
func (h *Handler) IdentifyPill(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeaturePill)

	gen, err := machine.Begin(session.PhaseUploading)
	if err != nil {
		abortWithError(c, httpErrorFor("pill_busy", err))
		return
	}

	image, mimeType, err := h.readImageUpload(c)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("invalid_upload", err))
		return
	}

	machine.Advance(gen, session.PhaseAnalyzing)
	result, err := h.pillSvc.Identify(c.Request.Context(), image, mimeType)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("pill_failed", err))
		return
	}
	machine.Complete(gen)

	c.JSON(http.StatusOK, result)
}

type symptomsRequest struct {
	Symptoms     string                 `json:"symptoms"`
	PersonalInfo *symptoms.PersonalInfo `json:"personalInfo,omitempty"`
}

// AnalyzeSymptoms reports possible conditions for free-text symptoms.
func (h *Handler) AnalyzeSymptoms(c *gin.Context) {
	claims, _ := getClaims(c)
	machine := h.sessions.Machine(claims.DeviceID, session.FeatureSymptoms)

	var req symptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	gen, err := machine.Begin(session.PhaseAnalyzing)
	if err != nil {
		abortWithError(c, httpErrorFor("symptoms_busy", err))
		return
	}

	analysis, err := h.symptomsSvc.Analyze(c.Request.Context(), req.Symptoms, req.PersonalInfo)
	if err != nil {
		machine.Fail(gen, apperrors.UserMessage(err))
		abortWithError(c, httpErrorFor("symptoms_failed", err))
		return
	}
	machine.Complete(gen)

	c.JSON(http.StatusOK, analysis)
}

// SessionSnapshot reports every feature's lifecycle state for the device.
func (h *Handler) SessionSnapshot(c *gin.Context) {
	claims, _ := getClaims(c)
	c.JSON(http.StatusOK, gin.H{"features": h.sessions.Snapshot(claims.DeviceID)})
}

// TakeHandoff transfers the last analyzed medicine list to the alternatives
// flow. Each handoff is delivered exactly once.
func (h *Handler) TakeHandoff(c *gin.Context) {
	claims, _ := getClaims(c)
	medicines, ok := h.sessions.TakeHandoff(claims.DeviceID)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "no pending handoff", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"medicines": medicines})
}

func (h *Handler) deviceMapFor(deviceID string) (*deviceMap, error) {
	h.mapMu.Lock()
	defer h.mapMu.Unlock()

	if dm, ok := h.mapByID[deviceID]; ok {
		return dm, nil
	}
	widget, err := h.mapLoader.Widget(mapview.WidgetConfig{
		CenterLatitude:  h.cfg.Locator.DefaultLatitude,
		CenterLongitude: h.cfg.Locator.DefaultLongitude,
		Zoom:            h.cfg.Locator.DefaultZoom,
	})
	if err != nil {
		return nil, err
	}
	state, ok := widget.(*mapview.StateWidget)
	if !ok {
		state = mapview.NewStateWidget(mapview.WidgetConfig{
			CenterLatitude:  h.cfg.Locator.DefaultLatitude,
			CenterLongitude: h.cfg.Locator.DefaultLongitude,
			Zoom:            h.cfg.Locator.DefaultZoom,
		})
	}
	dm := &deviceMap{
		widget: state,
		reconciler: mapview.NewReconciler(mapview.ReconcilerConfig{
			SelectionZoom: h.cfg.Locator.SelectionZoom,
			HighlightFor:  h.cfg.Locator.HighlightDuration,
		}, state),
	}
	h.mapByID[deviceID] = dm
	return dm, nil
}

// readImageUpload pulls the image either from a multipart form field or a
// raw request body, enforcing the configured size cap.
func (h *Handler) readImageUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxBytes)

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.CodeInvalidInput, "an image file is required", err)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.CodeInvalidInput, "the uploaded image could not be read", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", apperrors.Wrap(apperrors.CodeInvalidInput, "the uploaded image could not be read", err)
		}
		return data, fileHeader.Header.Get("Content-Type"), nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInvalidInput, "the uploaded image is too large or unreadable", err)
	}
	return data, contentType, nil
}

// httpErrorFor maps domain error codes onto transport statuses.
func httpErrorFor(fallbackCode string, err error) *HTTPError {
	status := http.StatusInternalServerError
	code := fallbackCode
	switch {
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status = http.StatusBadRequest
		code = apperrors.CodeInvalidInput
	case apperrors.IsCode(err, apperrors.CodeBusy):
		status = http.StatusConflict
		code = apperrors.CodeBusy
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		status = http.StatusNotFound
		code = apperrors.CodeNotFound
	case apperrors.IsCode(err, apperrors.CodeInvalidToken):
		status = http.StatusUnauthorized
		code = apperrors.CodeInvalidToken
	case apperrors.IsCode(err, apperrors.CodeMapLoadError):
		status = http.StatusServiceUnavailable
		code = apperrors.CodeMapLoadError
	case apperrors.IsCode(err, apperrors.CodeModelError):
		status = http.StatusBadGateway
		code = apperrors.CodeModelError
	case apperrors.IsCode(err, apperrors.CodeFormatError):
		status = http.StatusBadGateway
		code = apperrors.CodeFormatError
	case apperrors.IsCode(err, apperrors.CodeTransportError):
		status = http.StatusBadGateway
		code = apperrors.CodeTransportError
	}
	return NewHTTPError(status, code, apperrors.UserMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
