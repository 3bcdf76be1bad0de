package schema

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"
)

// LoadMode controls how errors are handled during mapping loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Load reads mapping files from path into a new Registry.
//
// path may be a directory (every top-level .cue, .yaml and .yml file is
// read; CUE files form one instance) or a single mapping file.
// The registry is nil only when nothing could be read at all.
func Load(path string, mode LoadMode) (*Registry, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("mapping path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing mapping path: %v", err)}}
	}

	var cueFiles, yamlFiles []string
	if info.IsDir() {
		cueFiles, yamlFiles, err = FindMappingFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
	} else {
		switch filepath.Ext(path) {
		case ".cue":
			cueFiles = []string{path}
		case ".yaml", ".yml":
			yamlFiles = []string{path}
		}
	}
	if len(cueFiles) == 0 && len(yamlFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no mapping files found in %s", path)}}
	}

	reg := NewRegistry()
	var errs []error
	add := func(configs []EntityConfig, file string) bool {
		for _, c := range configs {
			if err := c.Validate(); err != nil {
				errs = append(errs, &LoadError{Code: ErrCodeInvalidEntry, Message: err.Error(), File: file})
				if mode == LoadModeFailFast {
					return false
				}
				continue
			}
			if err := reg.Register(c.Entity()); err != nil {
				var le *LoadError
				if errors.As(err, &le) {
					le.File = file
				}
				errs = append(errs, err)
				if mode == LoadModeFailFast {
					return false
				}
			}
		}
		return true
	}

	if len(cueFiles) > 0 {
		configs, err := loadCUE(path, info.IsDir(), cueFiles)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return reg, errs
			}
		} else if !add(configs, filepath.Base(path)) {
			return reg, errs
		}
	}

	for _, file := range yamlFiles {
		configs, err := LoadYAMLFile(file)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return reg, errs
			}
			continue
		}
		if !add(configs, file) {
			return reg, errs
		}
	}

	slog.Debug("mappings loaded", "path", path, "entities", reg.Len(), "errors", len(errs))
	return reg, errs
}

// FindMappingFiles returns the top-level CUE and YAML files of dir, sorted.
func FindMappingFiles(dir string) (cueFiles, yamlFiles []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		p := filepath.Join(dir, entry.Name())
		switch filepath.Ext(p) {
		case ".cue":
			cueFiles = append(cueFiles, p)
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, p)
		}
	}
	sort.Strings(cueFiles)
	sort.Strings(yamlFiles)
	return cueFiles, yamlFiles, nil
}

// LoadYAMLFile decodes and validates one YAML mapping file.
func LoadYAMLFile(path string) ([]EntityConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: path}
	}
	configs, err := DecodeYAML(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: path}
	}
	return configs, nil
}

// DecodeYAML decodes a YAML mapping document. Unknown keys are rejected.
func DecodeYAML(data []byte) ([]EntityConfig, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	if err := configValidator.Struct(f); err != nil {
		return nil, describeValidation("", err)
	}
	return f.Entities, nil
}

// loadCUE builds the CUE files under path and extracts entity entries.
func loadCUE(path string, isDir bool, files []string) ([]EntityConfig, error) {
	ctx := cuecontext.New()

	var value cue.Value
	if isDir {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded", File: path}
		}
		inst := instances[0]
		if inst.Err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err), File: path}
		}
		value = ctx.BuildInstance(inst)
	} else {
		data, err := os.ReadFile(files[0])
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), File: files[0]}
		}
		value = ctx.CompileBytes(data, cue.Filename(files[0]))
	}
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err), File: path}
	}

	return DecodeCUE(value)
}

// DecodeCUE extracts entity entries from a built CUE value of the form
//
//	entity: Person: {
//	    table: "PersonDetails"
//	    fields: {
//	        Firstname: {}
//	        DOB: column: "BirthDate"
//	    }
//	}
func DecodeCUE(value cue.Value) ([]EntityConfig, error) {
	entitiesVal := value.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no entities found in CUE mapping", Pos: value.Pos()}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating entities: %v", err), Pos: entitiesVal.Pos()}
	}

	var configs []EntityConfig
	for iter.Next() {
		v := iter.Value()
		c := EntityConfig{Name: iter.Label()}

		if tableVal := v.LookupPath(cue.ParsePath("table")); tableVal.Exists() {
			table, err := tableVal.String()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("entity %s: table: %v", c.Name, err), Pos: tableVal.Pos()}
			}
			c.Table = table
		}

		if fieldsVal := v.LookupPath(cue.ParsePath("fields")); fieldsVal.Exists() {
			fieldIter, err := fieldsVal.Fields()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("entity %s: fields: %v", c.Name, err), Pos: fieldsVal.Pos()}
			}
			for fieldIter.Next() {
				f := FieldConfig{Name: fieldIter.Label()}
				if colVal := fieldIter.Value().LookupPath(cue.ParsePath("column")); colVal.Exists() {
					col, err := colVal.String()
					if err != nil {
						return nil, &LoadError{Code: ErrCodeInvalidEntry, Message: fmt.Sprintf("entity %s: field %s: column: %v", c.Name, f.Name, err), Pos: colVal.Pos()}
					}
					f.Column = col
				}
				c.Fields = append(c.Fields, f)
			}
		}

		configs = append(configs, c)
	}
	return configs, nil
}
