package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/response"
)

const maxBodyBytes = 1 << 20

// ParamUUID reads a path parameter as a UUID. On failure it writes a 400 and returns false.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.HandleError(c, apperror.Validation(map[string]interface{}{
			name: "must be a valid UUID",
		}))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON decodes the body into dst. On failure it writes a 400 and returns false.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.HandleError(c, apperror.ErrValidation.WithMessage("Invalid request body: %v", err))
		return false
	}
	return true
}

// BindStrictJSON is BindJSON that also rejects fields dst does not declare.
func BindStrictJSON(c *gin.Context, dst interface{}) bool {
	if err := DecodeStrict(c.Request.Body, dst); err != nil {
		response.HandleError(c, apperror.ErrValidation.WithMessage("Invalid request body: %v", err))
		return false
	}
	return true
}

// DecodeStrict decodes a single JSON object and fails on unknown fields.
func DecodeStrict(r io.Reader, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("body must contain a single JSON object")
	}
	return nil
}

// ReadBody buffers the body so it can be decoded more than once.
func ReadBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// Query holds typed accessors over the query string. The first parse
// failure is kept and reported by Err.
type Query struct {
	c      *gin.Context
	fields map[string]interface{}
}

func NewQuery(c *gin.Context) *Query {
	return &Query{c: c, fields: map[string]interface{}{}}
}

func (q *Query) String(key string) string {
	return strings.TrimSpace(q.c.Query(key))
}

func (q *Query) Bool(key string) *bool {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		q.fields[key] = "must be true or false"
		return nil
	}
	return &v
}

func (q *Query) Int(key string) *int {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fields[key] = "must be an integer"
		return nil
	}
	return &v
}

func (q *Query) Decimal(key string) *decimal.Decimal {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		q.fields[key] = "must be a number"
		return nil
	}
	return &v
}

func (q *Query) UUID(key string) *uuid.UUID {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := uuid.Parse(raw)
	if err != nil {
		q.fields[key] = "must be a valid UUID"
		return nil
	}
	return &v
}

// Date parses YYYY-MM-DD. endOfDay moves the result to the last instant of that day.
func (q *Query) Date(key string, endOfDay bool) *time.Time {
	raw := q.String(key)
	if raw == "" {
		return nil
	}
	v, err := time.Parse("2006-01-02", raw)
	if err != nil {
		q.fields[key] = "must be a date in YYYY-MM-DD format"
		return nil
	}
	if endOfDay {
		v = v.Add(24*time.Hour - time.Nanosecond)
	}
	return &v
}

// Err returns a validation error describing every malformed parameter.
func (q *Query) Err() error {
	if len(q.fields) == 0 {
		return nil
	}
	return apperror.Validation(q.fields)
}
