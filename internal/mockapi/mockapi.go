// Package mockapi serves a local stand-in for the media service: cookie
// login, avatar and post media uploads, and the profile read.
package mockapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/loykin/mediasmoke/internal/common"
	"github.com/loykin/mediasmoke/internal/constants"
	"github.com/loykin/mediasmoke/internal/util"
)

const (
	DefaultMediaBaseURL = "https://media.local/"
	DefaultTokenTTL     = time.Hour
	ctxEmailKey         = "email"
)

// Options configures the mock service.
type Options struct {
	// Users maps email to password.
	Users map[string]string
	// Secret signs the HS256 session tokens.
	Secret     []byte
	CookieName string
	// CookiePath and CookieDomain scope the session cookie. Scoping it away
	// from the login URL reproduces clients whose jar will not replay it.
	CookiePath   string
	CookieDomain string
	MediaBaseURL string
	TokenTTL     time.Duration
}

type profile struct {
	AvatarURL string
	Media     []string
}

// Server is the mock service state.
type Server struct {
	opts    Options
	engine  *gin.Engine
	logger  *common.Logger
	mu      sync.Mutex
	users   map[string]*profile
	uploads int
}

// New builds a Server with defaults filled in.
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte(uuid.NewString())
	}
	opts.CookieName = util.TrimWithDefault(opts.CookieName, constants.DefaultCookieName)
	opts.CookiePath = util.TrimWithDefault(opts.CookiePath, "/")
	opts.MediaBaseURL = util.TrimWithDefault(opts.MediaBaseURL, DefaultMediaBaseURL)
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	s := &Server{
		opts:   opts,
		logger: common.GetLogger().WithComponent("mockapi"),
		users:  map[string]*profile{},
	}
	for email := range opts.Users {
		s.users[email] = &profile{}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.POST(constants.DefaultLoginPath, s.login)
	authed := r.Group("/", s.requireSession())
	authed.POST(constants.AvatarUploadPath, s.updateAvatar)
	authed.POST(constants.PostMediaUploadPath, s.uploadPostMedia)
	authed.GET(constants.DefaultVerifyPath, s.me)
	s.engine = r
	return s
}

// Handler exposes the gin engine.
func (s *Server) Handler() http.Handler { return s.engine }

// Uploads counts accepted upload requests.
func (s *Server) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("mock request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	want, ok := s.opts.Users[req.Email]
	if !ok || want != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bad credentials"})
		return
	}
	token, err := s.issue(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.opts.CookieName, token, int(s.opts.TokenTTL.Seconds()), s.opts.CookiePath, s.opts.CookieDomain, false, true)
	c.JSON(http.StatusOK, gin.H{"message": "login success", "email": req.Email})
}

func (s *Server) issue(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.opts.TokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
}

func (s *Server) parse(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", errors.New("token has no email")
	}
	return email, nil
}

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(s.opts.CookieName)
		if err != nil || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session cookie"})
			return
		}
		email, err := s.parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(ctxEmailKey, email)
		c.Next()
	}
}

func (s *Server) mediaURL(kind, filename string) string {
	return strings.TrimRight(s.opts.MediaBaseURL, "/") + "/" + kind + "/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
}

func (s *Server) updateAvatar(c *gin.Context) {
	fh, err := c.FormFile(constants.AvatarFieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	n, err := partSize(c, fh)
	if err != nil {
		return
	}
	url := s.mediaURL("avatars", fh.Filename)

	s.mu.Lock()
	s.profile(c.GetString(ctxEmailKey)).AvatarURL = url
	s.uploads++
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"stored":       true,
		"bytes":        n,
		"url":          url,
		"content_type": fh.Header.Get("Content-Type"),
	})
}

func (s *Server) uploadPostMedia(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File[constants.PostMediaFieldName]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "images are required"})
		return
	}
	var total int64
	urls := make([]string, 0, len(form.File[constants.PostMediaFieldName]))
	for _, fh := range form.File[constants.PostMediaFieldName] {
		n, err := partSize(c, fh)
		if err != nil {
			return
		}
		total += n
		urls = append(urls, s.mediaURL("posts", fh.Filename))
	}

	s.mu.Lock()
	p := s.profile(c.GetString(ctxEmailKey))
	p.Media = append(p.Media, urls...)
	s.uploads++
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"stored": true, "bytes": total, "urls": urls})
}

func (s *Server) me(c *gin.Context) {
	email := c.GetString(ctxEmailKey)
	s.mu.Lock()
	p := s.profile(email)
	media := append([]string{}, p.Media...)
	avatar := p.AvatarURL
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"email": email, "avatar_url": avatar, "media": media})
}

// profile must be called with s.mu held.
func (s *Server) profile(email string) *profile {
	p, ok := s.users[email]
	if !ok {
		p = &profile{}
		s.users[email] = p
	}
	return p
}

// partSize reads an uploaded part to the end and returns its length. On
// failure it has already written the error response.
func partSize(c *gin.Context, fh *multipart.FileHeader) (int64, error) {
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open " + fh.Filename})
		return 0, err
	}
	defer func() { _ = f.Close() }()
	n, err := io.Copy(io.Discard, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read " + fh.Filename})
		return 0, err
	}
	return n, nil
}
