package project

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/geofunc/internal/model"
)

// Element and attribute names of a function entry.
const (
	functionsElem = "Functions"
	idElem        = "ID"
	nameElem      = "Name"
	specElem      = "Function"
	estimateElem  = "Estimate"
	typesElem     = "Types"
	typeElem      = "Type"
	pointsElem    = "Points"
	xAttr         = "X"
	yAttr         = "Y"
)

// decodeFunction reads the raw field values of a function element. Only the
// ID is validated here; the points table is checked by model.FromRaw.
func decodeFunction(el *Node) (model.RawFunction, error) {
	idText := strings.TrimSpace(el.childText(idElem))
	id, err := strconv.Atoi(idText)
	if err != nil {
		return model.RawFunction{}, fmt.Errorf("%w: %s %q is not an integer", ErrInvalidField, idElem, idText)
	}

	raw := model.RawFunction{
		ID:       id,
		Name:     el.childText(nameElem),
		Function: el.childText(specElem),
		Estimate: el.childText(estimateElem),
		Points:   model.Table{model.Row{}},
	}
	if types := el.child(typesElem); types != nil {
		for _, t := range types.Nodes {
			raw.Types = append(raw.Types, t.Text)
		}
	}
	if points := el.child(pointsElem); points != nil {
		raw.Points = pointsTable(points)
	}
	return raw, nil
}

// pointsTable flattens a Points element: the header row holds the element's
// attributes as name=value, and each child becomes [name, X, Y].
func pointsTable(points *Node) model.Table {
	header := make(model.Row, 0, len(points.Attrs))
	for _, a := range points.Attrs {
		header = append(header, a.Name.Local+"="+a.Value)
	}
	table := model.Table{header}
	for _, p := range points.Nodes {
		x, _ := p.attr(xAttr)
		y, _ := p.attr(yAttr)
		table = append(table, model.Row{p.XMLName.Local, x, y})
	}
	return table
}

// encodeFunction writes raw back into a function element. The ID is never
// rewritten. Point elements that already exist keep their other attributes.
func encodeFunction(el *Node, raw model.RawFunction) error {
	if len(raw.Points) == 0 {
		return fmt.Errorf("%w: points table has no header row", model.ErrMalformedTable)
	}

	attrs := make([]xml.Attr, 0, len(raw.Points[0]))
	for _, h := range raw.Points[0] {
		name, value, ok := strings.Cut(h, "=")
		if !ok || name == "" {
			return fmt.Errorf("%w: header entry %q is not name=value", model.ErrMalformedTable, h)
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	}
	rows := raw.Points[1:]
	for i, row := range rows {
		if len(row) != 3 {
			return fmt.Errorf("%w: row %d has %d fields, want 3", model.ErrMalformedTable, i+1, len(row))
		}
	}

	el.ensureChild(nameElem).Text = raw.Name
	el.ensureChild(specElem).Text = raw.Function
	if raw.Estimate != "" || el.child(estimateElem) != nil {
		el.ensureChild(estimateElem).Text = raw.Estimate
	}
	if len(raw.Types) > 0 || el.child(typesElem) != nil {
		setTypes(el.ensureChild(typesElem), raw.Types)
	}

	points := el.ensureChild(pointsElem)
	nodes := make([]*Node, len(rows))
	for i, row := range rows {
		var p *Node
		if i < len(points.Nodes) {
			p = points.Nodes[i]
		} else {
			p = &Node{}
		}
		p.XMLName = xml.Name{Local: row[0]}
		p.setAttr(xAttr, row[1])
		p.setAttr(yAttr, row[2])
		nodes[i] = p
	}

	points.Attrs = attrs
	points.Nodes = nodes
	return nil
}

func setTypes(types *Node, values []string) {
	nodes := make([]*Node, len(values))
	for i, v := range values {
		if i < len(types.Nodes) {
			nodes[i] = types.Nodes[i]
		} else {
			nodes[i] = &Node{XMLName: xml.Name{Local: typeElem}}
		}
		nodes[i].Text = v
	}
	types.Nodes = nodes
}
