package store

import (
	"context"
	"database/sql/driver"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DTO is the shape a write payload must satisfy: it knows how to turn
// itself into a full model once the store has assigned an id.
type DTO interface {
	ToModel(id int) any
}

// This type of hook separates from the regular PostSave hook since it has side effects
type AfterSaveCommitHook func()

// Hooks for database operations
type Hooks struct {
	PreSave         []func(ctx context.Context, tx *sqlx.Tx, data DTO, isNew bool) error
	PostSave        []func(ctx context.Context, tx *sqlx.Tx, data DTO, model any, isNew bool) error
	PreDelete       []func(ctx context.Context, tx *sqlx.Tx, id int) error
	PostDelete      []func(ctx context.Context, tx *sqlx.Tx, id int) error
	AfterSaveCommit []func(ctx context.Context, data DTO, model any, isNew bool) AfterSaveCommitHook
}

type Datastorer[T any] interface {
	Create(ctx context.Context, data DTO) (any, error)
	Update(ctx context.Context, id int, data DTO) (any, error)
	Delete(ctx context.Context, id int) error
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)

	// WARN: BulkUpdate does not run hooks.
	BulkUpdate(ctx context.Context, query string, args ...any) error
	// Set hooks.
	SetHooks(hooks Hooks)

	// useful for complex operations wherein store interface does not supported.
	Base() *sqlx.DB
}

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// getStructFieldsFromDTO extracts column names and named placeholders from
// a DTO struct. Fields implementing driver.Valuer (the JSONB wrappers)
// bind as plain named parameters; everything else does too, so the only
// job here is collecting the db-tagged columns in declaration order.
func getStructFieldsFromDTO(dto DTO) (columns string, placeholders string) {
	t := reflect.TypeOf(dto)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	var columnNames []string
	var placeholderNames []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		columnNames = append(columnNames, dbTag)
		placeholderNames = append(placeholderNames, ":"+dbTag)
	}

	return strings.Join(columnNames, ", "), strings.Join(placeholderNames, ", ")
}

// getNonEmptyFieldsFromDTO builds a SET clause from the DTO's populated
// fields. Zero-value strings and nil pointers are skipped so partial
// updates only touch what the caller filled in; booleans and Valuer
// fields always bind, since false and empty-JSON are meaningful values
// for lifecycle flags and settings documents.
func getNonEmptyFieldsFromDTO(dto DTO, params map[string]any) string {
	v := reflect.ValueOf(dto)
	t := reflect.TypeOf(dto)

	if v.Kind() == reflect.Ptr {
		v = v.Elem()
		t = t.Elem()
	}

	var fields []string

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)

		columnName := field.Tag.Get("db")
		if columnName == "-" {
			continue
		}
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}

		skippable := !field.Type.Implements(valuerType) && field.Type.Kind() != reflect.Bool
		if skippable {
			if value.Kind() == reflect.Ptr && value.IsNil() || value.Kind() == reflect.String && value.String() == "" {
				continue
			}
		}
		if value.Kind() == reflect.Ptr && value.IsNil() {
			continue
		}

		fields = append(fields, columnName+" = :"+columnName)
		params[columnName] = value.Interface()
	}

	return strings.Join(fields, ", ")
}
