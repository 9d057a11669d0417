package commands

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/models"
)

// datasetFormat is the encoding of a dataset file, chosen by extension
type datasetFormat string

const (
	formatJSON datasetFormat = "json"
	formatYAML datasetFormat = "yaml"
	formatTOML datasetFormat = "toml"
)

func formatOf(path string) (datasetFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	default:
		return "", errors.WithHint(
			errors.NewInvalidRequestError("unsupported dataset file %s", path),
			"use a .json, .yaml, .yml or .toml extension")
	}
}

func decodeDataset(r io.Reader, format datasetFormat) (models.Dataset, error) {
	var ds models.Dataset
	var err error
	switch format {
	case formatJSON:
		err = json.NewDecoder(r).Decode(&ds)
	case formatYAML:
		err = yaml.NewDecoder(r).Decode(&ds)
		if errors.Is(err, io.EOF) {
			err = nil // empty document
		}
	case formatTOML:
		_, err = toml.NewDecoder(r).Decode(&ds)
	default:
		return ds, errors.NewInvalidRequestError("unsupported dataset format %q", format)
	}
	if err != nil {
		return ds, errors.Wrapf(err, "decode %s dataset", format)
	}
	return ds, nil
}

func encodeDataset(w io.Writer, ds models.Dataset, format datasetFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(ds), "encode json dataset")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return errors.Wrap(err, "encode yaml dataset")
		}
		return errors.Wrap(enc.Close(), "encode yaml dataset")
	case formatTOML:
		return errors.Wrap(toml.NewEncoder(w).Encode(ds), "encode toml dataset")
	default:
		return errors.NewInvalidRequestError("unsupported dataset format %q", format)
	}
}

// readDataset decodes the dataset file at path
func readDataset(path string) (models.Dataset, error) {
	format, err := formatOf(path)
	if err != nil {
		return models.Dataset{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return models.Dataset{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return decodeDataset(f, format)
}

// writeDataset encodes ds into path, replacing any existing file
func writeDataset(path string, ds models.Dataset) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, am.DefaultFilePermissions)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := encodeDataset(f, ds, format); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
