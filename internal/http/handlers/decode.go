package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tbourn/telemacher/internal/domain"
)

// ErrBadRequest is the single failure DecodeChatAction reports; callers never
// receive a partial action.
var ErrBadRequest = errors.New("malformed chat action")

// Recognized multipart field names.
const (
	fieldAction = "action"
	fieldUserID = "user_id"
	fieldName   = "name"
	fieldText   = "text"
)

var chatFields = [...]string{fieldAction, fieldUserID, fieldName, fieldText}

// DecodeChatAction parses a multipart/form-data body into a Join or Message.
//
// Field names are matched case-insensitively after trimming, and the first
// occurrence of a field wins; later repeats are skipped without validation.
// Captured values must be valid UTF-8 and user_id must be a non-negative
// integer. The action must be exactly "join" (requires name) or "message"
// (requires text).
func DecodeChatAction(h http.Header, body []byte) (domain.ChatAction, error) {
	boundary, err := multipartBoundary(h.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(chatFields))
	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrBadRequest
		}
		name, ok := chatField(part.FormName())
		if !ok {
			part.Close()
			continue
		}
		if _, seen := fields[name]; seen {
			// Repeats are discarded unread, so their bytes are never
			// checked for valid UTF-8.
			part.Close()
			continue
		}
		val, err := io.ReadAll(part)
		part.Close()
		if err != nil || !utf8.Valid(val) {
			return nil, ErrBadRequest
		}
		fields[name] = string(val)
	}

	action, okAction := fields[fieldAction]
	rawID, okID := fields[fieldUserID]
	if !okAction || !okID {
		return nil, ErrBadRequest
	}
	userID, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return nil, ErrBadRequest
	}

	switch action {
	case domain.ActionJoin:
		name, ok := fields[fieldName]
		if !ok {
			return nil, ErrBadRequest
		}
		return domain.Join{UserID: userID, DisplayName: name}, nil
	case domain.ActionMessage:
		text, ok := fields[fieldText]
		if !ok {
			return nil, ErrBadRequest
		}
		return domain.Message{UserID: userID, Text: text}, nil
	default:
		return nil, ErrBadRequest
	}
}

// multipartBoundary checks the media type and extracts the boundary by
// splitting the header on ';' and each parameter on '='.
func multipartBoundary(contentType string) (string, error) {
	segs := strings.Split(contentType, ";")
	if !strings.EqualFold(strings.TrimSpace(segs[0]), "multipart/form-data") {
		return "", ErrBadRequest
	}
	for _, seg := range segs[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		k, v, ok := strings.Cut(seg, "=")
		if !ok {
			return "", ErrBadRequest
		}
		if !strings.EqualFold(strings.TrimSpace(k), "boundary") {
			continue
		}
		v = strings.TrimSpace(v)
		if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
			v = v[1 : len(v)-1]
		}
		if v == "" {
			return "", ErrBadRequest
		}
		return v, nil
	}
	return "", ErrBadRequest
}

func chatField(formName string) (string, bool) {
	n := strings.TrimSpace(formName)
	for _, f := range chatFields {
		if strings.EqualFold(n, f) {
			return f, true
		}
	}
	return "", false
}
