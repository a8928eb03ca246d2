package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "github.com/wizmedik/booking-api/internal/domain/appointment"
	"github.com/wizmedik/booking-api/internal/domain/availability"
	"github.com/wizmedik/booking-api/internal/dto"
	"github.com/wizmedik/booking-api/internal/httperr"
	"github.com/wizmedik/booking-api/internal/infra/repository"
	"github.com/wizmedik/booking-api/internal/middleware"
	"github.com/wizmedik/booking-api/internal/models"
	ucAppointment "github.com/wizmedik/booking-api/internal/usecase/appointment"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ======================================================
// STUBS
// ======================================================

type stubAvailability struct {
	got domain.AvailabilityInput
	res *ucAppointment.AvailabilityResult
	err error
}

func (s *stubAvailability) Execute(_ context.Context, in domain.AvailabilityInput) (*ucAppointment.AvailabilityResult, error) {
	s.got = in
	return s.res, s.err
}

type stubCreator struct {
	got ucAppointment.CreateAppointmentInput
	err error
}

func (s *stubCreator) Execute(_ context.Context, in ucAppointment.CreateAppointmentInput) (*models.Appointment, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.Appointment{ID: 10, Reference: "ref-1", Status: "scheduled"}, nil
}

type stubStatus struct {
	providerID, userID, appointmentID uint
	err                               error
}

func (s *stubStatus) Execute(_ context.Context, providerID, userID, appointmentID uint) (*models.Appointment, error) {
	s.providerID, s.userID, s.appointmentID = providerID, userID, appointmentID
	if s.err != nil {
		return nil, s.err
	}
	return &models.Appointment{ID: appointmentID, Status: "cancelled"}, nil
}

type stubLister struct{}

func (stubLister) ByDate(context.Context, uint, time.Time) ([]dto.AppointmentListDTO, error) {
	return []dto.AppointmentListDTO{{ID: 1}}, nil
}

func (stubLister) ByMonth(context.Context, uint, int, int) ([]dto.AppointmentListDTO, error) {
	return nil, nil
}

type stubDirectory struct {
	filter repository.ProviderFilter
}

func (d *stubDirectory) Search(_ context.Context, f repository.ProviderFilter) ([]models.Provider, error) {
	d.filter = f
	return []models.Provider{{ID: 1, Slug: "dr-hodzic"}}, nil
}

func (d *stubDirectory) GetBySlug(_ context.Context, slug string) (*models.Provider, error) {
	if slug != "dr-hodzic" {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Provider{ID: 1, Slug: slug}, nil
}

func (d *stubDirectory) ListServices(context.Context, uint) ([]models.MedicalService, error) {
	return []models.MedicalService{{ID: 7, Name: "Consultation"}}, nil
}

type stubSchedule struct {
	hours       []models.WorkingHours
	breaks      []models.ScheduleBreak
	deleted     []uint
	invalidated []uint
}

func (s *stubSchedule) LoadSchedule(context.Context, uint) (*domain.ScheduleRows, error) {
	return &domain.ScheduleRows{WorkingHours: s.hours, Breaks: s.breaks}, nil
}

func (s *stubSchedule) ReplaceWorkingHours(_ context.Context, _ uint, hours []models.WorkingHours) error {
	s.hours = hours
	return nil
}

func (s *stubSchedule) CreateBreak(_ context.Context, b *models.ScheduleBreak) error {
	b.ID = uint(len(s.breaks) + 1)
	s.breaks = append(s.breaks, *b)
	return nil
}

func (s *stubSchedule) DeleteBreak(_ context.Context, _ uint, id uint) error {
	if id != 3 {
		return gorm.ErrRecordNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSchedule) CreateHoliday(context.Context, *models.Holiday) error { return nil }

func (s *stubSchedule) DeleteHoliday(_ context.Context, _ uint, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSchedule) Invalidate(_ context.Context, providerID uint) {
	s.invalidated = append(s.invalidated, providerID)
}

type stubProfiles struct {
	fields map[string]any
}

func (p *stubProfiles) GetByID(_ context.Context, id uint) (*models.Provider, error) {
	pr := &models.Provider{ID: id}
	if url, ok := p.fields["photo_url"].(string); ok {
		pr.PhotoURL = url
	}
	return pr, nil
}

func (p *stubProfiles) Update(_ context.Context, _ uint, fields map[string]any) error {
	p.fields = fields
	return nil
}

type stubUploader struct {
	key  string
	body []byte
}

func (u *stubUploader) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	u.key, u.body = key, body
	return "https://cdn.test/" + key, nil
}

// ======================================================
// HELPERS
// ======================================================

// asProvider stands in for AuthMiddleware.
func asProvider(providerID, userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextProviderID, providerID)
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	}
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httperr.HTTPError {
	t.Helper()
	var e httperr.HTTPError
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("body is not an error payload: %s", w.Body.String())
	}
	return e
}

func publicRouter(avail *stubAvailability, create *stubCreator, dir *stubDirectory) *gin.Engine {
	h := NewPublicHandler(dir, avail, create, zap.NewNop())
	r := gin.New()
	r.GET("/providers", h.SearchProviders)
	r.GET("/:slug/services", h.ListServices)
	r.GET("/:slug/availability", h.Availability)
	r.POST("/:slug/appointments", h.CreateAppointment)
	return r
}

// ======================================================
// PUBLIC
// ======================================================

func TestPublicAvailability(t *testing.T) {
	avail := &stubAvailability{res: &ucAppointment.AvailabilityResult{
		Date:  "2026-10-19",
		Days:  2,
		Slots: []domain.TimeSlot{{Date: "2026-10-19", Start: "09:00", End: "09:30"}},
	}}
	r := publicRouter(avail, &stubCreator{}, &stubDirectory{})

	w := do(r, http.MethodGet, "/dr-hodzic/availability?date=2026-10-19&service_id=7&days=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if avail.got.ProviderSlug != "dr-hodzic" || avail.got.ServiceID != 7 || avail.got.Days != 2 {
		t.Fatalf("unexpected input %+v", avail.got)
	}
	if !strings.Contains(w.Body.String(), `"start":"09:00"`) {
		t.Fatalf("slots missing from %s", w.Body.String())
	}
}

func TestPublicAvailability_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
		code   string
	}{
		{"missing date", "", nil, http.StatusBadRequest, "missing_date"},
		{"bad service id", "date=2026-10-19&service_id=x", nil, http.StatusBadRequest, "invalid_service_id"},
		{"broken schedule", "date=2026-10-19", &availability.InvalidConfigurationError{Field: "working_hours", Reason: "inverted"}, http.StatusServiceUnavailable, "schedule_unavailable"},
		{"bad request", "date=2026-10-19", &availability.InvalidRequestError{Field: "days", Reason: "out of range"}, http.StatusBadRequest, "invalid_request"},
		{"unknown provider", "date=2026-10-19", httperr.ErrBusiness("provider_not_found"), http.StatusNotFound, "provider_not_found"},
		{"database down", "date=2026-10-19", errors.New("connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := publicRouter(&stubAvailability{err: tt.err}, &stubCreator{}, &stubDirectory{})
			w := do(r, http.MethodGet, "/dr-hodzic/availability?"+tt.query, nil)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if got := decodeError(t, w).Code; got != tt.code {
				t.Fatalf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func validBooking() gin.H {
	return gin.H{
		"patient_name":  "Amra Begic",
		"patient_phone": "+387 61 000 111",
		"purpose":       gin.H{"kind": "service", "service_id": 7},
		"date":          "2026-10-19",
		"time":          "09:00",
	}
}

func TestPublicCreateAppointment(t *testing.T) {
	create := &stubCreator{}
	r := publicRouter(&stubAvailability{}, create, &stubDirectory{})

	w := do(r, http.MethodPost, "/dr-hodzic/appointments", validBooking())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if create.got.ProviderSlug != "dr-hodzic" || create.got.PatientPhone != "+38761000111" {
		t.Fatalf("unexpected input %+v", create.got)
	}
	if sp, ok := create.got.Purpose.(domain.ServicePurpose); !ok || sp.ServiceID != 7 {
		t.Fatalf("purpose = %#v", create.got.Purpose)
	}
	if !strings.Contains(w.Body.String(), `"reference":"ref-1"`) {
		t.Fatalf("reference missing: %s", w.Body.String())
	}
}

func TestPublicCreateAppointment_Rejections(t *testing.T) {
	other := validBooking()
	other["purpose"] = gin.H{"kind": "other", "reason": ""}
	badPhone := validBooking()
	badPhone["patient_phone"] = "call me"
	missing := validBooking()
	delete(missing, "date")

	tests := []struct {
		name string
		body gin.H
		code string
	}{
		{"empty reason", other, "invalid_purpose"},
		{"bad phone", badPhone, "invalid_phone"},
		{"missing date", missing, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			create := &stubCreator{}
			w := do(publicRouter(&stubAvailability{}, create, &stubDirectory{}), http.MethodPost, "/dr-hodzic/appointments", tt.body)
			if w.Code != http.StatusBadRequest || decodeError(t, w).Code != tt.code {
				t.Fatalf("got %d %s, want 400 %s", w.Code, w.Body.String(), tt.code)
			}
			if create.got.Purpose != nil {
				t.Fatal("use case must not run")
			}
		})
	}
}

func TestPublicCreateAppointment_ConflictCarriesAlternatives(t *testing.T) {
	create := &stubCreator{err: &ucAppointment.SlotTakenError{Alternatives: []domain.TimeSlot{
		{Date: "2026-10-19", Start: "09:30", End: "10:00"},
	}}}
	w := do(publicRouter(&stubAvailability{}, create, &stubDirectory{}), http.MethodPost, "/dr-hodzic/appointments", validBooking())

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Code    string `json:"error_code"`
		Details struct {
			Alternatives []domain.TimeSlot `json:"alternatives"`
		} `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "time_conflict" || len(body.Details.Alternatives) != 1 || body.Details.Alternatives[0].Start != "09:30" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestPublicDirectory(t *testing.T) {
	dir := &stubDirectory{}
	r := publicRouter(&stubAvailability{}, &stubCreator{}, dir)

	w := do(r, http.MethodGet, "/providers?kind=doctor&city=Sarajevo&specialty=cardiology&query=hod", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":1`) {
		t.Fatalf("search: %d %s", w.Code, w.Body.String())
	}
	if dir.filter.City != "Sarajevo" || dir.filter.Kind != "doctor" || dir.filter.Query != "hod" {
		t.Fatalf("filter = %+v", dir.filter)
	}

	if w := do(r, http.MethodGet, "/nobody/services", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown slug: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/dr-hodzic/services", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Consultation") {
		t.Fatalf("services: %d %s", w.Code, w.Body.String())
	}
}

// ======================================================
// STAFF
// ======================================================

func TestAppointmentStatusChange(t *testing.T) {
	cancel := &stubStatus{}
	complete := &stubStatus{err: httperr.ErrBusiness("not_started")}
	h := NewAppointmentHandler(&stubCreator{}, complete, cancel, stubLister{}, zap.NewNop())

	r := gin.New()
	r.Use(asProvider(2, 5))
	r.PATCH("/appointments/:id/cancel", h.Cancel)
	r.PATCH("/appointments/:id/complete", h.Complete)
	r.GET("/appointments", h.ListByDate)

	if w := do(r, http.MethodPatch, "/appointments/41/cancel", nil); w.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
	if cancel.providerID != 2 || cancel.userID != 5 || cancel.appointmentID != 41 {
		t.Fatalf("cancel called with %+v", cancel)
	}

	w := do(r, http.MethodPatch, "/appointments/41/complete", nil)
	if w.Code != http.StatusConflict || decodeError(t, w).Code != "not_started" {
		t.Fatalf("complete: %d %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodPatch, "/appointments/abc/cancel", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/appointments?date=19.10.2026", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/appointments?date=2026-10-19", nil); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total":1`) {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
}

func TestStaffCreateSetsActor(t *testing.T) {
	create := &stubCreator{}
	h := NewAppointmentHandler(create, &stubStatus{}, &stubStatus{}, stubLister{}, zap.NewNop())

	r := gin.New()
	r.Use(asProvider(2, 5))
	r.POST("/appointments", h.Create)

	if w := do(r, http.MethodPost, "/appointments", validBooking()); w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if create.got.ProviderID != 2 || create.got.UserID == nil || *create.got.UserID != 5 {
		t.Fatalf("actor not set: %+v", create.got)
	}
}

func scheduleRouter(s *stubSchedule) *gin.Engine {
	h := NewWorkingHoursHandler(s, s, s, zap.NewNop())
	r := gin.New()
	r.Use(asProvider(2, 5))
	r.GET("/working-hours", h.Get)
	r.PUT("/working-hours", h.Update)
	r.GET("/breaks", h.ListBreaks)
	r.POST("/breaks", h.CreateBreak)
	r.DELETE("/breaks/:id", h.DeleteBreak)
	r.POST("/holidays", h.CreateHoliday)
	r.DELETE("/holidays/:id", h.DeleteHoliday)
	return r
}

func TestWorkingHoursUpdate(t *testing.T) {
	s := &stubSchedule{}
	r := scheduleRouter(s)

	bad := gin.H{"days": []gin.H{{"weekday": 1, "active": true, "start_time": "17:00", "end_time": "09:00"}}}
	w := do(r, http.MethodPut, "/working-hours", bad)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != "invalid_schedule" {
		t.Fatalf("inverted hours: %d %s", w.Code, w.Body.String())
	}
	if len(s.invalidated) != 0 {
		t.Fatal("rejected edit must not invalidate the cache")
	}

	good := gin.H{"days": []gin.H{
		{"weekday": 1, "active": true, "start_time": "09:00", "end_time": "17:00", "lunch_start": "12:00", "lunch_end": "13:00"},
		{"weekday": 0, "active": false},
	}}
	if w := do(r, http.MethodPut, "/working-hours", good); w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if len(s.hours) != 2 || s.hours[0].ProviderID != 2 {
		t.Fatalf("hours not stored: %+v", s.hours)
	}
	if len(s.invalidated) != 1 || s.invalidated[0] != 2 {
		t.Fatalf("cache not invalidated: %v", s.invalidated)
	}

	if w := do(r, http.MethodGet, "/breaks", nil); w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("empty breaks must be []: %s", w.Body.String())
	}
}

func TestBreaksAndHolidays(t *testing.T) {
	s := &stubSchedule{}
	r := scheduleRouter(s)

	both := gin.H{"weekday": 1, "date": "2026-10-19", "start_time": "10:00", "end_time": "10:30"}
	if w := do(r, http.MethodPost, "/breaks", both); w.Code != http.StatusBadRequest || decodeError(t, w).Code != "invalid_break" {
		t.Fatalf("weekday+date: %d %s", w.Code, w.Body.String())
	}

	badDate := gin.H{"date": "next monday", "start_time": "10:00", "end_time": "10:30"}
	if w := do(r, http.MethodPost, "/breaks", badDate); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}

	daily := gin.H{"start_time": "10:00", "end_time": "10:15", "reason": "coffee"}
	if w := do(r, http.MethodPost, "/breaks", daily); w.Code != http.StatusCreated {
		t.Fatalf("daily break: %d %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodDelete, "/breaks/9", nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign break: %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/breaks/3", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete break: %d", w.Code)
	}

	inverted := gin.H{"start_date": "2026-12-26", "end_date": "2026-12-24"}
	if w := do(r, http.MethodPost, "/holidays", inverted); w.Code != http.StatusBadRequest || decodeError(t, w).Code != "invalid_range" {
		t.Fatalf("inverted holiday: %d %s", w.Code, w.Body.String())
	}

	single := gin.H{"start_date": "2026-12-25", "reason": "Christmas"}
	w := do(r, http.MethodPost, "/holidays", single)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"end_date":"2026-12-25"`) {
		t.Fatalf("single-day holiday: %d %s", w.Code, w.Body.String())
	}

	if len(s.invalidated) != 3 {
		t.Fatalf("expected 3 invalidations, got %v", s.invalidated)
	}
}

func TestUploadPhoto(t *testing.T) {
	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1200, 600))); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("photo", "me.png")
	_, _ = part.Write(img.Bytes())
	_ = mw.Close()

	upload := func(h *ProviderHandler) *httptest.ResponseRecorder {
		r := gin.New()
		r.Use(asProvider(2, 5))
		r.PUT("/photo", h.UploadPhoto)
		req := httptest.NewRequest(http.MethodPut, "/photo", bytes.NewReader(body.Bytes()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := upload(NewProviderHandler(&stubProfiles{}, nil, zap.NewNop())); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("without storage: %d", w.Code)
	}

	profiles := &stubProfiles{}
	up := &stubUploader{}
	w := upload(NewProviderHandler(profiles, up, zap.NewNop()))
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(up.key, "providers/2/") || !strings.HasSuffix(up.key, ".webp") || len(up.body) == 0 {
		t.Fatalf("unexpected object %q (%d bytes)", up.key, len(up.body))
	}
	if profiles.fields["photo_url"] != "https://cdn.test/"+up.key {
		t.Fatalf("photo_url not saved: %v", profiles.fields)
	}
}

func TestUpdateProvider(t *testing.T) {
	profiles := &stubProfiles{}
	h := NewProviderHandler(profiles, nil, zap.NewNop())
	r := gin.New()
	r.Use(asProvider(2, 5))
	r.PATCH("/provider", h.Update)

	if w := do(r, http.MethodPatch, "/provider", gin.H{"timezone": "Mars/Olympus"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad timezone: %d", w.Code)
	}
	if w := do(r, http.MethodPatch, "/provider", gin.H{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty patch: %d", w.Code)
	}

	w := do(r, http.MethodPatch, "/provider", gin.H{"city": " Mostar ", "min_advance_minutes": 120})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if profiles.fields["city"] != "Mostar" || profiles.fields["min_advance_minutes"] != 120 {
		t.Fatalf("fields = %v", profiles.fields)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks map[string]Check
		want   int
		store  string
	}{
		{name: "all up", checks: map[string]Check{"database": ok, "store": ok}, want: http.StatusOK, store: "ok"},
		{name: "store down", checks: map[string]Check{"database": ok, "store": down}, want: http.StatusServiceUnavailable, store: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, zap.NewNop())
			r := gin.New()
			r.GET("/health", h.Live)
			r.GET("/ready", h.Ready)

			if w := do(r, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
				t.Fatalf("live status = %d", w.Code)
			}

			w := do(r, http.MethodGet, "/ready", nil)
			if w.Code != tt.want {
				t.Fatalf("ready status = %d, want %d: %s", w.Code, tt.want, w.Body)
			}
			var body struct {
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Checks["store"] != tt.store || body.Checks["database"] != "ok" {
				t.Fatalf("unexpected checks %v", body.Checks)
			}
		})
	}
}
