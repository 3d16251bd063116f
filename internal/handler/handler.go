// Package handler holds the gin handlers for the auth gateway and the CRUD surface.
package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"college/internal/apperr"
	"college/internal/auth"
	"college/internal/store"
)

// respondError renders err as {"error": msg} with the taxonomy status.
func respondError(c *gin.Context, err error) {
	status, msg := apperr.Status(err)
	c.JSON(status, gin.H{"error": msg})
}

// bindBody decodes a JSON body into dst. An empty body leaves dst untouched so
// the caller's required-field checks produce the 400.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apperr.BadRequest(bodyMessage(err)))
		return false
	}
	return true
}

func bodyMessage(err error) string {
	var numErr *intFieldError
	if errors.As(err, &numErr) {
		return numErr.Error()
	}
	return "Invalid JSON body"
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return id, true
}

// callerID returns the login id of the authenticated caller.
func callerID(c *gin.Context) string {
	claims, _ := auth.ClaimsFrom(c)
	return claims.Subject
}

// deleted renders the outcome of a delete by id.
func deleted(c *gin.Context, what string, affected int64, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted", "affected_rows": affected})
}

// updated renders the outcome of a partial update.
func updated(c *gin.Context, what string, affected int64, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " updated", "affected_rows": affected})
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

// flexInt32 is flexInt for INT columns.
type flexInt32 int32

type intFieldError struct {
	raw        string
	outOfRange bool
}

func (e *intFieldError) Error() string {
	if e.outOfRange {
		return fmt.Sprintf("integer out of range: %s", e.raw)
	}
	return fmt.Sprintf("expected an integer, got %s", e.raw)
}

func parseFlexInt(data []byte, bitSize int) (int64, error) {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	n, err := strconv.ParseInt(raw, 10, bitSize)
	if err != nil {
		return 0, &intFieldError{raw: string(data), outOfRange: errors.Is(err, strconv.ErrRange)}
	}
	return n, nil
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	n, err := parseFlexInt(data, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func (f *flexInt) int64Ptr() *int64 {
	if f == nil {
		return nil
	}
	v := int64(*f)
	return &v
}

func (f *flexInt32) UnmarshalJSON(data []byte) error {
	n, err := parseFlexInt(data, 32)
	if err != nil {
		return err
	}
	*f = flexInt32(n)
	return nil
}

func (f *flexInt32) intPtr() *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// timestampPtr parses an optional timestamp field.
func timestampPtr(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := store.ParseTimestamp(*value)
	if err != nil {
		return nil, apperr.BadRequest("Invalid " + field)
	}
	return &t, nil
}

// nonEmpty returns nil for a nil or empty string.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
