// Package project reads and writes the function entries of a project file.
//
// A project is either a .gsz archive (a zip whose root-level XML entry is the
// project document) or a bare XML document. Functions are the element
// children of any Functions element:
//
//	<Functions>
//	  <Function>
//	    <ID>1</ID>
//	    <Name>Silt VWC</Name>
//	    <Function>VolWCFun(InputParam=Suction,OutputParam=WaterContent,LogInput=1,LogOutput=0)</Function>
//	    <Types><Type>Material</Type><Type>Hydraulic</Type></Types>
//	    <Points Len="2">
//	      <Point X="0.0" Y="1.5" />
//	      <Point X="1.0" Y="2.5" />
//	    </Points>
//	  </Function>
//	</Functions>
//
// A Project guards its document with a mutex, so one loaded project may be
// shared between goroutines.
package project

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rcliao/geofunc/internal/model"
)

var (
	ErrFunctionNotFound = errors.New("function not found")
	ErrNoDocument       = errors.New("archive has no project document")
	ErrInvalidField     = errors.New("invalid field")
)

// Project is a loaded project file.
type Project struct {
	mu sync.Mutex

	path    string
	root    *Node
	archive []byte // original .gsz bytes; nil for bare XML
	docName string // document entry inside the archive
}

// Open loads the project at path.
func Open(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}

	p := &Project{path: path}
	if !isArchive(path) {
		root, err := decodeNode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		p.root = root
		return p, nil
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	doc := findDocument(zr, path)
	if doc == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDocument)
	}
	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", doc.Name, err)
	}
	defer rc.Close()
	root, err := decodeNode(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Name, err)
	}

	p.root = root
	p.archive = data
	p.docName = doc.Name
	return p, nil
}

func isArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gsz")
}

// findDocument picks the root-level XML entry named after the archive, or
// the first root-level XML entry.
func findDocument(zr *zip.Reader, path string) *zip.File {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var first *zip.File
	for _, f := range zr.File {
		if strings.Contains(f.Name, "/") || !strings.EqualFold(filepath.Ext(f.Name), ".xml") {
			continue
		}
		if strings.EqualFold(strings.TrimSuffix(f.Name, filepath.Ext(f.Name)), base) {
			return f
		}
		if first == nil {
			first = f
		}
	}
	return first
}

// Path returns the file the project was loaded from.
func (p *Project) Path() string { return p.path }

// functionElements returns every function element in document order.
func (p *Project) functionElements() []*Node {
	var els []*Node
	p.root.walk(func(n *Node) {
		if n.XMLName.Local == functionsElem {
			els = append(els, n.Nodes...)
		}
	})
	return els
}

// findElement locates function id. Elements whose fields cannot be decoded
// are skipped; if id is not found, the first such element is reported with
// its position alongside ErrFunctionNotFound.
func (p *Project) findElement(id int) (*Node, model.RawFunction, error) {
	var skipped error
	for i, el := range p.functionElements() {
		raw, err := decodeFunction(el)
		if err != nil {
			if skipped == nil {
				skipped = fmt.Errorf("function element %d: %w", i+1, err)
			}
			continue
		}
		if raw.ID == id {
			return el, raw, nil
		}
	}
	if skipped != nil {
		return nil, model.RawFunction{}, fmt.Errorf("%w: %d (%w)", ErrFunctionNotFound, id, skipped)
	}
	return nil, model.RawFunction{}, fmt.Errorf("%w: %d", ErrFunctionNotFound, id)
}

// Functions materializes every function of the project. A malformed points
// table or ID fails the whole call. A malformed spec string does not: the
// function is still returned, and the option error is reported in warnings.
func (p *Project) Functions() (fns []*model.Function, warnings []error, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, el := range p.functionElements() {
		raw, err := decodeFunction(el)
		if err != nil {
			return nil, nil, fmt.Errorf("function element %d: %w", i+1, err)
		}
		f, err := model.FromRaw(raw)
		if f == nil {
			return nil, nil, err
		}
		if err != nil {
			warnings = append(warnings, err)
		}
		fns = append(fns, f)
	}
	return fns, warnings, nil
}

// Raw returns the raw field values of function id.
func (p *Project) Raw(id int) (model.RawFunction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, raw, err := p.findElement(id)
	return raw, err
}

// Function materializes function id. As with model.FromRaw, an error
// wrapping model.ErrMalformedOptions comes with a usable Function.
func (p *Project) Function(id int) (*model.Function, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, raw, err := p.findElement(id)
	if err != nil {
		return nil, err
	}
	return model.FromRaw(raw)
}

// Update writes f back into the document. The change reaches disk on the
// next Save or SaveAs.
func (p *Project) Update(f *model.Function) error {
	raw, err := f.ToRaw()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	el, _, err := p.findElement(f.ID)
	if err != nil {
		return err
	}
	if err := encodeFunction(el, raw); err != nil {
		return fmt.Errorf("function %d: %w", f.ID, err)
	}
	return nil
}

// Save writes the project back to the file it was loaded from.
func (p *Project) Save() error {
	return p.SaveAs(p.path)
}

// SaveAs writes the project to path. For archives, every entry other than
// the project document is copied unchanged.
func (p *Project) SaveAs(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var buf bytes.Buffer
	if p.archive == nil {
		if err := p.root.encode(&buf); err != nil {
			return err
		}
	} else if err := p.writeArchive(&buf); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func (p *Project) writeArchive(w io.Writer) error {
	zr, err := zip.NewReader(bytes.NewReader(p.archive), int64(len(p.archive)))
	if err != nil {
		return fmt.Errorf("reopen archive: %w", err)
	}
	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		if f.Name != p.docName {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		hdr := f.FileHeader
		hdr.Method = zip.Deflate
		dw, err := zw.CreateHeader(&hdr)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if err := p.root.encode(dw); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".geofunc-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace project: %w", err)
	}
	return nil
}
