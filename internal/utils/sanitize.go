package utils

import (
	"errors"
	"reflect"

	"github.com/microcosm-cc/bluemonday"
)

// sanitizeStruct walks the struct behind obj and strips markup from every
// string field in place. obj must be a pointer to a struct.
func sanitizeStruct(policy *bluemonday.Policy, obj interface{}) error {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.New("payload must be a non-nil pointer")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return errors.New("payload must point to a struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(policy.Sanitize(field.String()))
		case reflect.Struct:
			if err := sanitizeStruct(policy, field.Addr().Interface()); err != nil {
				return err
			}
		}
	}

	return nil
}
