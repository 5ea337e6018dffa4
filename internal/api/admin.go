package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Table is a generically fetched backend table. The client has no static
// schema for it: the column set and its order come from the first row's JSON
// keys.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Row is one open mapping of column name to scalar value.
type Row map[string]interface{}

// ID renders the row identifier as its wire string.
func (r Row) ID() string {
	return formatValue(r["id"])
}

// Value renders a cell for display, with "-" standing in for null.
func (r Row) Value(column string) string {
	value, ok := r[column]
	if !ok || value == nil {
		return "-"
	}
	return formatValue(value)
}

// EditValue renders a cell for a form input. Null and missing cells stay
// empty here; the display placeholder must not leak back into the row on
// save.
func (r Row) EditValue(column string) string {
	value, ok := r[column]
	if !ok || value == nil {
		return ""
	}
	return formatValue(value)
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AdminRows fetches every row of the named backend table.
func (c *Client) AdminRows(ctx context.Context, table string) (*Table, error) {
	var raw []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/admin/"+table+"/all", nil, nil, &raw); err != nil {
		return nil, err
	}
	result := &Table{Name: table}
	if len(raw) == 0 {
		return result, nil
	}
	columns, err := columnOrder(raw[0])
	if err != nil {
		return nil, err
	}
	result.Columns = columns
	result.Rows = make([]Row, 0, len(raw))
	for _, message := range raw {
		row := Row{}
		decoder := json.NewDecoder(bytes.NewReader(message))
		decoder.UseNumber()
		if err := decoder.Decode(&row); err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// columnOrder walks the object's tokens so the keys keep their wire order,
// which a map decode would lose.
func columnOrder(object json.RawMessage) ([]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(object))
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", token)
	}
	var columns []string
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", token)
		}
		columns = append(columns, key)
		if err := skipValue(decoder); err != nil {
			return nil, err
		}
	}
	return columns, nil
}

func skipValue(decoder *json.Decoder) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	delim, ok := token.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		if d, ok := token.(json.Delim); ok {
			if d == '{' || d == '[' {
				depth++
			} else {
				depth--
			}
		}
	}
	return nil
}

// AdminUpdateRow issues a full-row update for the given table row.
func (c *Client) AdminUpdateRow(ctx context.Context, table, id string, row Row) error {
	return c.do(ctx, http.MethodPut, "/admin/update/"+table+"/"+id, nil, row, nil)
}

func (c *Client) AdminDeleteRow(ctx context.Context, table, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/delete/"+table+"/"+id, nil, nil, nil)
}
