// Package output renders modi-cli results as tables, JSON or YAML.
//
// All three formats name fields by their json tags. In tables, fields
// tagged `table:"wide"` appear only in wide mode, property maps list as
// sorted KEY/VALUE rows, and multi-line values are escaped onto one line.
package output
