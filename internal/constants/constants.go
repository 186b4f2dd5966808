package constants

import "net/http"

// Service contract defaults
const (
	DefaultBaseURL     = "http://localhost:8888"
	DefaultLoginPath   = "/login"
	DefaultVerifyPath  = "/me"
	DefaultCookieName  = "JWT"
	DefaultLoginMethod = http.MethodPost
)

// Upload targets
const (
	TargetAvatar    = "avatar"
	TargetPostMedia = "post-media"

	AvatarUploadPath    = "/user/update-avatar"
	AvatarFieldName     = "avatar"
	AvatarMimeType      = "image/jpeg"
	PostMediaUploadPath = "/post/media/upload"
	PostMediaFieldName  = "images"
	PostMediaMimeType   = "image/png"
)

// Login body encodings
const (
	EncodingForm = "form"
	EncodingJSON = "json"
)

// Environment
const (
	EnvPrefix = "MEDIASMOKE"
)
