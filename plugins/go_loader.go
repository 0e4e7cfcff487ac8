package plugins

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/spf13/afero"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"
)

const goDefinitionFuncName = "JourneyDefinitions"

// LoadGoDefinitionDir evaluates every .go file in dir and compiles the
// journeys its JourneyDefinitions() returns. Each journey's path is the file
// followed by #n, its 1-based position.
func LoadGoDefinitionDir(fsys afero.Fs, dir string) ([]DefinitionFile, error) {
	return scanJourneyDir(fsys, dir, isGoFile, func(path string) ([]DefinitionFile, error) {
		return loadGoDefinitionFile(fsys, path)
	})
}

func isGoFile(name string) bool {
	return filepath.Ext(name) == ".go" && !strings.HasSuffix(name, "_test.go")
}

func loadGoDefinitionFile(fsys afero.Fs, path string) ([]DefinitionFile, error) {
	code, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("journey %s: %w", path, err)
	}
	raws, err := evalJourneyDefinitions(string(code))
	if err != nil {
		return nil, fmt.Errorf("journey %s: %w", path, err)
	}
	files := make([]DefinitionFile, 0, len(raws))
	for idx, raw := range raws {
		source := fmt.Sprintf("%s#%d", path, idx+1)
		payload, err := yaml.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("journey %s: %w", source, err)
		}
		def, err := ParseDefinitionYAML(payload)
		if err != nil {
			return nil, fmt.Errorf("journey %s: %w", source, err)
		}
		file, err := compileFile(source, def)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// evalJourneyDefinitions interprets code with the standard library available
// and calls its JourneyDefinitions function.
func evalJourneyDefinitions(code string) ([]map[string]any, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("plugin: source is empty")
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if _, err := i.Eval(code); err != nil {
		return nil, fmt.Errorf("plugin: interpret: %w", err)
	}
	fnValue, err := i.Eval(goDefinitionFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: must define %s() ([]map[string]any, error): %w", goDefinitionFuncName, err)
	}
	return invokeDefinitionFunc(fnValue)
}

func invokeDefinitionFunc(value reflect.Value) ([]map[string]any, error) {
	if !value.IsValid() {
		return nil, fmt.Errorf("missing %s function", goDefinitionFuncName)
	}
	fn := value
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", goDefinitionFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return ([]map[string]any[, error])", goDefinitionFuncName)
	}
	defsVal := results[0]
	if len(results) == 2 && !results[1].IsNil() {
		if e, ok := results[1].Interface().(error); ok && e != nil {
			return nil, e
		}
		return nil, fmt.Errorf("%s returned non-error second value", goDefinitionFuncName)
	}
	if defs, ok := defsVal.Interface().([]map[string]any); ok {
		return defs, nil
	}
	if defsVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s must return []map[string]any", goDefinitionFuncName)
	}
	result := make([]map[string]any, defsVal.Len())
	for i := 0; i < defsVal.Len(); i++ {
		m, ok := defsVal.Index(i).Interface().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not map[string]any", goDefinitionFuncName, i)
		}
		result[i] = m
	}
	return result, nil
}
