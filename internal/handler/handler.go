package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trackas/internal/attendance"
	"trackas/internal/auth"
	"trackas/internal/classroom"
	"trackas/internal/credential"
	"trackas/internal/geo"
	"trackas/internal/joinlink"
	"trackas/internal/session"
)

// ClassStore is the storage surface the handlers need.
type ClassStore interface {
	RegisterLecturer(ctx context.Context, l classroom.Lecturer) (classroom.Lecturer, error)
	FindLecturerByEmail(ctx context.Context, email string) (*classroom.Lecturer, error)
	CreateClass(ctx context.Context, cs classroom.ClassSession) (classroom.ClassSession, error)
	ListClassesByLecturer(ctx context.Context, email string) ([]classroom.ClassSession, error)
	GetClassByID(ctx context.Context, courseID string) (*classroom.ClassSession, error)
	LecturerStats(ctx context.Context, email string) (classroom.Stats, error)
}

// Config carries the handler-facing slice of app config.
type Config struct {
	JWTIssuer     string
	JWTSigningKey string
	SessionTTL    time.Duration
	BaseURL       string
}

type Handler struct {
	store      ClassStore
	attendance *attendance.Service
	sessions   session.Store
	cfg        Config
}

func New(store ClassStore, att *attendance.Service, sessions session.Store, cfg Config) *Handler {
	return &Handler{store: store, attendance: att, sessions: sessions, cfg: cfg}
}

// Routes mounts the API. authMW guards the lecturer surface; public
// middleware (rate limiting) applies to the join flow only.
func (h *Handler) Routes(r *gin.Engine, authMW gin.HandlerFunc, public ...gin.HandlerFunc) {
	r.POST("/v1/auth/register", h.Register)
	r.POST("/v1/auth/login", h.Login)

	lecturer := r.Group("/v1", authMW)
	lecturer.POST("/auth/logout", h.Logout)
	lecturer.GET("/dashboard", h.Dashboard)
	lecturer.POST("/classes", h.CreateClass)
	lecturer.GET("/classes", h.ListClasses)
	lecturer.GET("/classes/:courseId/attendees", h.ClassAttendees)
	lecturer.GET("/classes/:courseId/attendees.csv", h.ClassAttendeesCSV)
	lecturer.GET("/classes/:courseId/qr", h.ClassQR)

	join := r.Group("/v1/join")
	for _, mw := range public {
		join.Use(mw)
	}
	join.GET("/:courseId", h.JoinInfo)
	join.POST("/:courseId", h.JoinSubmit)
}

// ---------- Auth ----------

type registerRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" binding:"required,min=8"`
}

// Register creates a lecturer account. Registration does not log the
// lecturer in; they authenticate separately.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := credential.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process password"})
		return
	}

	lec, err := h.store.RegisterLecturer(c.Request.Context(), classroom.Lecturer{
		Email:        req.Email,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, classroom.ErrDuplicateLecturer) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		storageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lec)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials, creates a session and returns a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lec, err := h.store.FindLecturerByEmail(c.Request.Context(), req.Email)
	if err != nil {
		storageError(c, err)
		return
	}
	if lec == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	ok, err := credential.Verify(req.Password, lec.PasswordHash)
	if err != nil {
		log.Printf("credential check failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credential check failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	tok, err := auth.Issue(lec.Email, lec.FullName, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	if err := h.sessions.Create(c.Request.Context(), tok.SessionID, h.cfg.SessionTTL); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": tok.Value,
		"expires_at":   tok.ExpiresAt.Unix(),
		"lecturer": gin.H{
			"email":     lec.Email,
			"full_name": lec.FullName,
		},
	})
}

// Logout destroys the lecturer's session; the token stops working immediately.
func (h *Handler) Logout(c *gin.Context) {
	claims := mustClaims(c)
	if err := h.sessions.Destroy(c.Request.Context(), claims.ID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- Lecturer surface ----------

// Dashboard returns the lecturer's summary counters.
func (h *Handler) Dashboard(c *gin.Context) {
	claims := mustClaims(c)
	stats, err := h.store.LecturerStats(c.Request.Context(), claims.Email)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type createClassRequest struct {
	CourseTitle  string   `json:"course_title" binding:"required"`
	CourseCode   string   `json:"course_code" binding:"required"`
	LocationName string   `json:"location_name" binding:"required"`
	Date         string   `json:"date" binding:"required"`
	Time         string   `json:"time" binding:"required"`
	Note         string   `json:"note"`
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
}

// CreateClass schedules a session and returns it with its join link.
func (h *Handler) CreateClass(c *gin.Context) {
	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !geo.ValidCoordinate(*req.Lat, *req.Lng) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venue coordinates out of range"})
		return
	}

	claims := mustClaims(c)
	cls, err := h.store.CreateClass(c.Request.Context(), classroom.ClassSession{
		CourseTitle:   req.CourseTitle,
		CourseCode:    req.CourseCode,
		LocationName:  req.LocationName,
		Date:          req.Date,
		Time:          req.Time,
		Note:          req.Note,
		LecturerEmail: claims.Email,
		Latitude:      *req.Lat,
		Longitude:     *req.Lng,
	})
	if err != nil {
		storageError(c, err)
		return
	}

	link, err := joinlink.Build(h.cfg.BaseURL, cls.CourseID, cls.Latitude, cls.Longitude)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "join link build failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"class": cls, "join_link": link})
}

// ListClasses returns the lecturer's sessions.
func (h *Handler) ListClasses(c *gin.Context) {
	claims := mustClaims(c)
	classes, err := h.store.ListClassesByLecturer(c.Request.Context(), claims.Email)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}

// ownedClass loads a class and enforces that it belongs to the caller. A
// class owned by someone else reads the same as a missing one.
func (h *Handler) ownedClass(c *gin.Context) *classroom.ClassSession {
	claims := mustClaims(c)
	cls, err := h.store.GetClassByID(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		storageError(c, err)
		return nil
	}
	if cls == nil || cls.LecturerEmail != claims.Email {
		c.JSON(http.StatusNotFound, gin.H{"error": classroom.ErrSessionNotFound.Error()})
		return nil
	}
	return cls
}

// ClassAttendees returns the roster for one of the lecturer's sessions.
func (h *Handler) ClassAttendees(c *gin.Context) {
	cls := h.ownedClass(c)
	if cls == nil {
		return
	}
	roster, err := h.attendance.Roster(c.Request.Context(), cls.CourseID)
	if err != nil {
		storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course_id": cls.CourseID, "attendees": roster})
}

// ClassAttendeesCSV downloads the roster as CSV.
func (h *Handler) ClassAttendeesCSV(c *gin.Context) {
	cls := h.ownedClass(c)
	if cls == nil {
		return
	}
	out, err := h.attendance.ExportCSV(c.Request.Context(), cls.CourseID)
	if err != nil {
		storageError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance_%s.csv", cls.CourseCode))
	c.Data(http.StatusOK, "text/csv", out)
}

// ClassQR renders the session's join link as a QR PNG.
func (h *Handler) ClassQR(c *gin.Context) {
	cls := h.ownedClass(c)
	if cls == nil {
		return
	}
	link, err := joinlink.Build(h.cfg.BaseURL, cls.CourseID, cls.Latitude, cls.Longitude)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "join link build failed"})
		return
	}
	png, err := joinlink.RenderCode(link)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ---------- Public join flow ----------

// JoinInfo describes a session to the public join page. Venue coordinates
// stay server-side; the URL's lat/lng hint is never echoed back as truth.
func (h *Handler) JoinInfo(c *gin.Context) {
	cls, err := h.store.GetClassByID(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		storageError(c, err)
		return
	}
	if cls == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid attendance link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"course_id":     cls.CourseID,
		"course_title":  cls.CourseTitle,
		"course_code":   cls.CourseCode,
		"location_name": cls.LocationName,
		"date":          cls.Date,
		"time":          cls.Time,
	})
}

type joinSubmitRequest struct {
	Name     string   `json:"name" binding:"required"`
	MatricNo string   `json:"matric_no" binding:"required"`
	Lat      *float64 `json:"lat" binding:"required"`
	Lng      *float64 `json:"lng" binding:"required"`
}

// JoinSubmit marks attendance for a student at the given position.
func (h *Handler) JoinSubmit(c *gin.Context) {
	var req joinSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	att, err := h.attendance.Submit(c.Request.Context(), attendance.SubmitRequest{
		CourseID: c.Param("courseId"),
		Name:     req.Name,
		MatricNo: req.MatricNo,
		Lat:      *req.Lat,
		Lng:      *req.Lng,
	})
	if err != nil {
		var oor *attendance.OutOfRangeError
		switch {
		case errors.Is(err, classroom.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid attendance link"})
		case errors.Is(err, attendance.ErrInvalidCoordinate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "location reading is invalid, try again"})
		case errors.As(err, &oor):
			c.JSON(http.StatusForbidden, gin.H{
				"error":           "you are too far from the venue to mark attendance",
				"distance_meters": oor.DistanceMeters,
				"radius_meters":   oor.RadiusMeters,
			})
		case errors.Is(err, classroom.ErrAlreadyMarked):
			c.JSON(http.StatusConflict, gin.H{"error": "you have already marked attendance"})
		default:
			storageError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"attendee": att})
}

// ---------- helpers ----------

func mustClaims(c *gin.Context) auth.Claims {
	claimsAny, _ := c.Get("claims")
	claims, _ := claimsAny.(auth.Claims)
	return claims
}

func storageError(c *gin.Context, err error) {
	log.Printf("storage error: %v", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable, try again later"})
}
