/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/sensornode/pkg/logger"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")

	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// EnvConfigLoader loads configuration from environment variables. Nested
// fields join their json names with underscores, so with prefix
// SENSORNODE_ the field schedule.start_hour is read from
// SENSORNODE_SCHEDULE_START_HOUR.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader. A complete document in <prefix>CONFIG_JSON
// takes precedence over individual variables.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if jsonConfig := os.Getenv(e.prefix + "CONFIG_JSON"); jsonConfig != "" {
		if err := json.Unmarshal([]byte(jsonConfig), dst); err != nil {
			return fmt.Errorf("failed to unmarshal CONFIG_JSON: %w", err)
		}

		if e.logger != nil {
			e.logger.Info().Msg("Loaded configuration from CONFIG_JSON environment variable")
		}

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	e.loadStruct(v, e.prefix)

	if e.logger != nil {
		e.logger.Debug().Str("prefix", e.prefix).Msg("Loaded configuration from environment variables")
	}

	return nil
}

func (e *EnvConfigLoader) loadStruct(v reflect.Value, prefix string) {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		jsonTag := fieldType.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		fieldName := strings.Split(jsonTag, ",")[0]
		envName := prefix + strings.ToUpper(strings.ReplaceAll(fieldName, ".", "_"))

		if err := e.setFieldValue(field, envName); err != nil && e.logger != nil {
			e.logger.Warn().
				Str("field", fieldName).
				Str("env", envName).
				Err(err).
				Msg("Ignoring invalid environment value")
		}
	}
}

func (e *EnvConfigLoader) setFieldValue(field reflect.Value, envName string) error {
	if isNestedStruct(field) {
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}

			field = field.Elem()
		}

		e.loadStruct(field, envName+"_")

		return nil
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok || envValue == "" {
		return nil
	}

	return setFieldByKind(field, envName, envValue)
}

func isNestedStruct(field reflect.Value) bool {
	t := field.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.Kind() == reflect.Struct && !reflect.PointerTo(t).Implements(jsonUnmarshalerType)
}

func setFieldByKind(field reflect.Value, envName, envValue string) error {
	// Types with their own JSON form, such as durations and node types,
	// parse the value as a JSON string.
	if field.CanAddr() && field.Addr().Type().Implements(jsonUnmarshalerType) {
		if err := json.Unmarshal([]byte(strconv.Quote(envValue)), field.Addr().Interface()); err != nil {
			return fmt.Errorf("invalid value for %s: %w", envName, err)
		}

		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Bool:
		b, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %w", envName, err)
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntField(field, envName, envValue)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(envValue, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value for %s: %w", envName, err)
		}

		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(envValue, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %w", envName, err)
		}

		field.SetFloat(f)
	case reflect.Slice:
		return setSliceField(field, envName, envValue)
	case reflect.Ptr:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		return setFieldByKind(field.Elem(), envName, envValue)
	default:
		if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
			return fmt.Errorf("unsupported type %s for %s: %w", field.Kind(), envName, err)
		}
	}

	return nil
}

func setIntField(field reflect.Value, envName, envValue string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(envValue)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %w", envName, err)
		}

		field.SetInt(int64(d))

		return nil
	}

	i, err := strconv.ParseInt(envValue, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %w", envName, err)
	}

	field.SetInt(i)

	return nil
}

func setSliceField(field reflect.Value, envName, envValue string) error {
	if field.Type().Elem().Kind() == reflect.String {
		values := strings.Split(envValue, ",")
		slice := reflect.MakeSlice(field.Type(), len(values), len(values))

		for i, v := range values {
			slice.Index(i).SetString(strings.TrimSpace(v))
		}

		field.Set(slice)

		return nil
	}

	if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
		return fmt.Errorf("invalid slice value for %s: %w", envName, err)
	}

	return nil
}
