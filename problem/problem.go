// Package problem builds a sealed constraints.Model from a YAML description.
//
// It plays the part of the AST collaborator: a description declares types, members,
// the typed positions of a program and the constraints between them, and the loader
// drives the model's factories exactly as a source visitor would.
//
//	subtype: ArrayList
//	supertype: List
//	compliance: 3
//	types:
//	  - {name: List, interface: true}
//	  - {name: ArrayList, extends: [List]}
//	methods:
//	  - {id: make, name: make, declaring: Factory, returns: ArrayList, returnAt: "Factory.java:10:9"}
//	variables:
//	  - {id: local, kind: type, type: ArrayList, at: "Main.java:12:9"}
//	  - {id: made, kind: return, method: make}
//	constraints:
//	  - subtype: [made, local]
package problem

import (
	"github.com/phasereditor2d/supertype/constraints"
	"github.com/phasereditor2d/supertype/internal/log"
	"github.com/phasereditor2d/supertype/ttype"
	"github.com/phasereditor2d/supertype/ttype/hierarchy"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"strconv"
	"strings"
)

var logger = log.DefaultLogger.With("section", "problem")

type Description struct {
	SubType     string           `yaml:"subtype"`
	SuperType   string           `yaml:"supertype"`
	Compliance  int              `yaml:"compliance"`
	Types       []TypeDecl       `yaml:"types"`
	Methods     []MethodDecl     `yaml:"methods"`
	Variables   []VariableDecl   `yaml:"variables"`
	Constraints []ConstraintDecl `yaml:"constraints"`
}

type TypeDecl struct {
	Name      string   `yaml:"name"`
	Interface bool     `yaml:"interface"`
	Library   bool     `yaml:"library"`
	Extends   []string `yaml:"extends"`
}

type MethodDecl struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Declaring   string   `yaml:"declaring"`
	Returns     string   `yaml:"returns"`
	Params      []string `yaml:"params"`
	Constructor bool     `yaml:"constructor"`
	ReturnAt    string   `yaml:"returnAt"`
	ParamsAt    []string `yaml:"paramsAt"`
}

type VariableDecl struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	Type string `yaml:"type"`
	At   string `yaml:"at"`
	// Method is the id of the member of a return, parameter or local
	Method string `yaml:"method"`
	Index  int    `yaml:"index"`
	// Name and Declaring describe fields and locals
	Name      string `yaml:"name"`
	Declaring string `yaml:"declaring"`
	// Expr is the id of the operand of a cast
	Expr string `yaml:"expr"`
}

// ConstraintDecl has exactly one field set
type ConstraintDecl struct {
	Subtype     []string `yaml:"subtype"`
	Equal       []string `yaml:"equal"`
	Covariant   []string `yaml:"covariant"`
	Conditional []string `yaml:"conditional"`
}

// Problem is a loaded description
type Problem struct {
	Hierarchy *hierarchy.Hierarchy
	Model     *constraints.Model
	// Variables maps ids to their variables. Positions the model does not
	// constrain, such as primitives, map to nil
	Variables map[string]*constraints.Variable
	Methods   map[string]*hierarchy.Method
}

// Variable returns the variable declared with id, nil if it is not constrained
func (p *Problem) Variable(id string) *constraints.Variable {
	return p.Variables[id]
}

func LoadFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open problem")
	}
	defer f.Close()
	p, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load %s", path)
	}
	return p, nil
}

func Load(r io.Reader) (*Problem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read problem")
	}
	return Parse(data)
}

func Parse(data []byte) (*Problem, error) {
	var desc Description
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, errors.Wrap(err, "could not decode problem")
	}
	return Build(desc)
}

// Build creates the hierarchy and the sealed model of desc
func Build(desc Description) (*Problem, error) {
	b := &builder{
		h:     hierarchy.New(),
		decls: make(map[string]TypeDecl, len(desc.Types)),
		problem: &Problem{
			Variables: make(map[string]*constraints.Variable, len(desc.Variables)),
			Methods:   make(map[string]*hierarchy.Method, len(desc.Methods)),
		},
	}
	b.problem.Hierarchy = b.h
	if err := b.declareTypes(desc.Types); err != nil {
		return nil, err
	}
	subType, err := b.typeRef(desc.SubType)
	if err != nil {
		return nil, errors.Wrap(err, "bad subtype")
	}
	superType, err := b.typeRef(desc.SuperType)
	if err != nil {
		return nil, errors.Wrap(err, "bad supertype")
	}
	if !subType.CanAssignTo(superType) {
		logger.Warn("subtype cannot be assigned to supertype", "subtype", subType, "supertype", superType)
	}
	model := constraints.NewModel(b.h, subType, superType)
	if desc.Compliance != 0 {
		model.SetCompliance(constraints.Compliance(desc.Compliance))
	}
	b.problem.Model = model

	if err := b.declareMethods(desc.Methods); err != nil {
		return nil, err
	}
	for _, decl := range desc.Variables {
		if err := b.declareVariable(decl); err != nil {
			return nil, errors.Wrapf(err, "variable %q", decl.ID)
		}
	}
	for i, decl := range desc.Constraints {
		if err := b.declareConstraint(decl); err != nil {
			return nil, errors.Wrapf(err, "constraint %d", i)
		}
	}
	model.EndCreation()
	return b.problem, nil
}

type builder struct {
	h       *hierarchy.Hierarchy
	decls   map[string]TypeDecl
	problem *Problem
	// visiting guards against cyclic extends clauses
	visiting map[string]bool
}

func (b *builder) declareTypes(decls []TypeDecl) error {
	for _, decl := range decls {
		if decl.Name == "" {
			return errors.New("type without a name")
		}
		if _, ok := b.decls[decl.Name]; ok {
			return errors.Errorf("type %s declared twice", decl.Name)
		}
		if _, ok := b.h.Lookup(decl.Name); ok {
			return errors.Errorf("type %s is built in", decl.Name)
		}
		b.decls[decl.Name] = decl
	}
	b.visiting = make(map[string]bool)
	for _, decl := range decls {
		if _, err := b.declareType(decl.Name); err != nil {
			return err
		}
	}
	return nil
}

// declareType declares name after its supertypes, so extends clauses may refer forward
func (b *builder) declareType(name string) (*hierarchy.Named, error) {
	if named, ok := b.h.Lookup(name); ok {
		return named, nil
	}
	decl, ok := b.decls[name]
	if !ok {
		return nil, errors.Errorf("unknown type %s", name)
	}
	if b.visiting[name] {
		return nil, errors.Errorf("type %s extends itself", name)
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	supers := make([]*hierarchy.Named, 0, len(decl.Extends))
	for _, ref := range decl.Extends {
		super, err := b.typeRef(ref)
		if err != nil {
			return nil, errors.Wrapf(err, "supertype of %s", name)
		}
		supers = append(supers, super)
	}
	var named *hierarchy.Named
	if decl.Interface {
		named = b.h.Interface(name, supers...)
	} else {
		named = b.h.Class(name, supers...)
	}
	if decl.Library {
		named.Library()
	}
	return named, nil
}

// typeRef resolves "Name", "Name[]" and "Name<Arg,...>" references
func (b *builder) typeRef(ref string) (*hierarchy.Named, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("empty type reference")
	}
	if base, ok := strings.CutSuffix(ref, "[]"); ok {
		elem, err := b.typeRef(base)
		if err != nil {
			return nil, err
		}
		return b.h.ArrayOf(elem), nil
	}
	if open := strings.IndexByte(ref, '<'); open > 0 && strings.HasSuffix(ref, ">") {
		generic, err := b.typeRef(ref[:open])
		if err != nil {
			return nil, err
		}
		if !generic.IsParameterizable() {
			return nil, errors.Errorf("type %s cannot be parameterized", ref)
		}
		var args []*hierarchy.Named
		for _, argRef := range splitArgs(ref[open+1 : len(ref)-1]) {
			arg, err := b.typeRef(argRef)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return b.h.Parameterized(generic, args...), nil
	}
	return b.declareType(ref)
}

// splitArgs splits on top-level commas
func splitArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	return append(args, s[start:])
}

// parseRange reads "file:offset:length". The empty string is no location
func parseRange(s string) (ttype.Range, error) {
	if s == "" {
		return ttype.Range{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return ttype.Range{}, errors.Errorf("range %q is not file:offset:length", s)
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil {
		return ttype.Range{}, errors.Wrapf(err, "range %q", s)
	}
	length, err := strconv.Atoi(parts[2])
	if err != nil {
		return ttype.Range{}, errors.Wrapf(err, "range %q", s)
	}
	return ttype.Range{File: ttype.FileID(parts[0]), Offset: offset, Length: length}, nil
}

func (b *builder) declareMethods(decls []MethodDecl) error {
	for _, decl := range decls {
		id := decl.ID
		if id == "" {
			id = decl.Name
		}
		if _, ok := b.problem.Methods[id]; ok {
			return errors.Errorf("method %s declared twice", id)
		}
		method := &hierarchy.Method{Name: decl.Name, Constructor: decl.Constructor}
		var err error
		if decl.Declaring != "" {
			if method.Declaring, err = b.typeRef(decl.Declaring); err != nil {
				return errors.Wrapf(err, "method %s", id)
			}
		}
		if decl.Returns != "" {
			if method.Return, err = b.typeRef(decl.Returns); err != nil {
				return errors.Wrapf(err, "method %s", id)
			}
		}
		for _, ref := range decl.Params {
			param, err := b.typeRef(ref)
			if err != nil {
				return errors.Wrapf(err, "method %s", id)
			}
			method.Params = append(method.Params, param)
		}
		if method.ReturnAt, err = parseRange(decl.ReturnAt); err != nil {
			return errors.Wrapf(err, "method %s", id)
		}
		for _, at := range decl.ParamsAt {
			r, err := parseRange(at)
			if err != nil {
				return errors.Wrapf(err, "method %s", id)
			}
			method.ParamsAt = append(method.ParamsAt, r)
		}
		b.problem.Methods[id] = method
	}
	return nil
}

func (b *builder) method(id string) (*hierarchy.Method, error) {
	method, ok := b.problem.Methods[id]
	if !ok {
		return nil, errors.Errorf("unknown method %q", id)
	}
	return method, nil
}

func (b *builder) variable(id string) (*constraints.Variable, error) {
	v, ok := b.problem.Variables[id]
	if !ok {
		return nil, errors.Errorf("unknown variable %q", id)
	}
	return v, nil
}

func (b *builder) declareVariable(decl VariableDecl) error {
	if decl.ID == "" {
		return errors.New("variable without an id")
	}
	if _, ok := b.problem.Variables[decl.ID]; ok {
		return errors.New("declared twice")
	}
	at, err := parseRange(decl.At)
	if err != nil {
		return err
	}
	typeOf := func() (*hierarchy.Named, error) {
		return b.typeRef(decl.Type)
	}
	model := b.problem.Model

	var v *constraints.Variable
	switch decl.Kind {
	case "type", "immutable", "independent", "declaring", "exception", "cast":
		t, err := typeOf()
		if err != nil {
			return err
		}
		switch decl.Kind {
		case "type":
			v = model.TypeVariable(t, at)
		case "immutable":
			v = model.ImmutableTypeVariable(t)
		case "independent":
			v = model.IndependentTypeVariable(t)
		case "declaring":
			v = model.DeclaringTypeVariable(t)
		case "exception":
			v = model.ExceptionVariable(t, at)
		case "cast":
			expression, err := b.variable(decl.Expr)
			if err != nil {
				return errors.Wrap(err, "cast operand")
			}
			v = model.CastVariable(expression, t, at)
		}
	case "return", "parameter":
		method, err := b.method(decl.Method)
		if err != nil {
			return err
		}
		if decl.Kind == "return" {
			v = model.ReturnTypeVariable(method)
		} else {
			v = model.ParameterTypeVariable(method, decl.Index)
		}
	case "field", "local":
		t, err := typeOf()
		if err != nil {
			return err
		}
		binding := &hierarchy.Var{Name: decl.Name, T: t, Field: decl.Kind == "field", At: at}
		if binding.Name == "" {
			binding.Name = decl.ID
		}
		if decl.Declaring != "" {
			if binding.Declaring, err = b.typeRef(decl.Declaring); err != nil {
				return err
			}
		}
		if decl.Method != "" {
			if binding.Member, err = b.method(decl.Method); err != nil {
				return err
			}
		}
		v = model.VariableVariable(binding)
	default:
		return errors.Errorf("unknown kind %q", decl.Kind)
	}
	b.problem.Variables[decl.ID] = v
	return nil
}

func (b *builder) endpoints(ids []string, want int) ([]*constraints.Variable, error) {
	if len(ids) != want {
		return nil, errors.Errorf("expected %d variables, got %d", want, len(ids))
	}
	vars := make([]*constraints.Variable, len(ids))
	for i, id := range ids {
		v, err := b.variable(id)
		if err != nil {
			return nil, err
		}
		vars[i] = v
	}
	return vars, nil
}

func (b *builder) declareConstraint(decl ConstraintDecl) error {
	model := b.problem.Model
	set := 0
	for _, ids := range [][]string{decl.Subtype, decl.Equal, decl.Covariant, decl.Conditional} {
		if ids != nil {
			set++
		}
	}
	if set != 1 {
		return errors.Errorf("exactly one of subtype, equal, covariant or conditional is expected, got %d", set)
	}
	switch {
	case decl.Subtype != nil:
		vars, err := b.endpoints(decl.Subtype, 2)
		if err != nil {
			return err
		}
		model.CreateSubtypeConstraint(vars[0], vars[1])
	case decl.Equal != nil:
		vars, err := b.endpoints(decl.Equal, 2)
		if err != nil {
			return err
		}
		model.CreateEqualityConstraint(vars[0], vars[1])
	case decl.Covariant != nil:
		vars, err := b.endpoints(decl.Covariant, 2)
		if err != nil {
			return err
		}
		model.CreateCovariantTypeConstraint(vars[0], vars[1])
	default:
		vars, err := b.endpoints(decl.Conditional, 3)
		if err != nil {
			return err
		}
		model.CreateConditionalTypeConstraint(vars[0], vars[1], vars[2])
	}
	return nil
}
