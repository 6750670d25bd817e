package tweakfile

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/signature"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// SkipUnknown is the metadata key that makes unknown rule ids non-fatal.
const SkipUnknown = "skip-unknown"

// Parse reads one tweaks document. Any error aborts the whole document.
func Parse(r io.Reader, registry *tweaks.Registry) (*tweaks.Set, error) {
	p := &parser{tz: NewTokenizer(r), registry: registry, set: tweaks.NewSet()}
	if err := p.document(); err != nil {
		return nil, err
	}
	return p.set, nil
}

// ParseString reads a tweaks document from a string.
func ParseString(s string, registry *tweaks.Registry) (*tweaks.Set, error) {
	return Parse(strings.NewReader(s), registry)
}

// ParseFile reads a tweaks document from disk.
func ParseFile(path string, registry *tweaks.Registry) (*tweaks.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.IO, "opening tweaks", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, registry)
}

// ParseFiles parses each file with the same registry and merges the results in order.
func ParseFiles(paths []string, registry *tweaks.Registry) (*tweaks.Set, error) {
	out := tweaks.NewSet()
	for _, path := range paths {
		s, err := ParseFile(path, registry)
		if err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
		out = out.Merge(s)
	}
	return out, nil
}

type parser struct {
	tz       *Tokenizer
	registry *tweaks.Registry
	set      *tweaks.Set
	last     Token
}

func (p *parser) document() error {
	for {
		tok, ok, err := p.tz.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		p.last = tok
		if tok.Kind != Literal {
			return p.errorf(tok, "Expected string/literal, found %s at %s", tok, tok.Position())
		}
		switch {
		case tok.IsKeyword("package"):
			if err := p.packageBlock(); err != nil {
				return err
			}
		case tok.IsKeyword("class"):
			if err := p.classBlock(); err != nil {
				return err
			}
		default:
			if err := p.metadata(tok); err != nil {
				return err
			}
		}
	}
}

func (p *parser) metadata(key Token) error {
	tok, err := p.expect()
	if err != nil {
		return err
	}
	switch {
	case tok.Is(';'):
		p.set.SetMetadata(key.Value, "")
	case tok.Is('='):
		value, err := p.expectLiteral("metadata value")
		if err != nil {
			return err
		}
		if _, err := p.expectPunct(';', "metadata value"); err != nil {
			return err
		}
		p.set.SetMetadata(key.Value, value.Value)
	default:
		return p.errorf(tok, "Expected = or ; after metadata key, found %s at %s", tok, tok.Position())
	}
	return nil
}

func (p *parser) packageBlock() error {
	name, err := p.expectLiteral("package name")
	if err != nil {
		return err
	}
	if _, err := p.expectPunct('{', "package name"); err != nil {
		return err
	}
	ctx, err := tweaks.NewParseContext(p.set.MetadataMap(), tweaks.PackageRef, name.Value, nil)
	if err != nil {
		return err
	}
	list, err := p.tweakList(ctx)
	if err != nil {
		return err
	}
	p.set.AddPackageTweaks(name.Value, list...)
	return nil
}

func (p *parser) classBlock() error {
	name, err := p.expectLiteral("class name")
	if err != nil {
		return err
	}
	if _, err := p.expectPunct('{', "class name"); err != nil {
		return err
	}
	ctx, err := tweaks.NewParseContext(p.set.MetadataMap(), tweaks.ClassRef, name.Value, nil)
	if err != nil {
		return err
	}
	class := tweaks.NewClassTweaks(name.Value)
	for {
		start, err := p.expect()
		if err != nil {
			return err
		}
		if start.Kind == Punct {
			if !start.Is('}') {
				return p.errorf(start, "Expected } to end class declaration, found %s at %s", start, start.Position())
			}
			break
		}
		if start.IsKeyword("member") {
			member, list, err := p.memberBlock(ctx)
			if err != nil {
				return err
			}
			class.AddMemberTweaks(member, list...)
			continue
		}
		t, err := p.tweak(start, ctx)
		if err != nil {
			return err
		}
		if t != nil {
			class.AddTweaks(t)
		}
	}
	p.set.AddClass(class)
	return nil
}

func (p *parser) memberBlock(classCtx *tweaks.ParseContext) (signature.MemberReference, []tweaks.Tweak, error) {
	var none signature.MemberReference
	returnOrName, err := p.expectLiteral("member type or name")
	if err != nil {
		return none, nil, err
	}
	next, err := p.expect()
	if err != nil {
		return none, nil, err
	}

	var returnType signature.Type
	name := returnOrName.Value
	if next.Kind == Literal {
		if returnType, err = p.parseType(returnOrName); err != nil {
			return none, nil, err
		}
		name = next.Value
		if next, err = p.expect(); err != nil {
			return none, nil, err
		}
	}

	var memberType signature.Type
	if next.Is('(') {
		if returnType == nil && name != simpleName(classCtx.Owner) {
			return none, nil, p.errorf(returnOrName, "Constructor name must match class name, found %s at %s", returnOrName, returnOrName.Position())
		}
		params, err := p.params()
		if err != nil {
			return none, nil, err
		}
		method, err := signature.NewMethod(returnType, params)
		if err != nil {
			return none, nil, p.wrapf(returnOrName, err, "Invalid method type %s at %s", returnOrName, returnOrName.Position())
		}
		memberType = method
		if next, err = p.expect(); err != nil {
			return none, nil, err
		}
	} else {
		if returnType == nil {
			return none, nil, p.errorf(returnOrName, "Missing field type at %s", returnOrName.Position())
		}
		if returnType == signature.Void {
			return none, nil, p.errorf(returnOrName, "Field type may not be void at %s", returnOrName.Position())
		}
		memberType = returnType
	}

	if !next.Is('{') {
		return none, nil, p.errorf(next, "Expected { after member header, found %s at %s", next, next.Position())
	}
	member := signature.MemberReference{Name: name, Type: memberType}
	ctx, err := tweaks.NewParseContext(classCtx.Metadata, tweaks.KindOf(member), classCtx.Owner, &member)
	if err != nil {
		return none, nil, err
	}
	list, err := p.tweakList(ctx)
	if err != nil {
		return none, nil, err
	}
	return member, list, nil
}

// params reads parameter types up to and including ")". Commas between
// parameters are optional.
func (p *parser) params() ([]signature.Type, error) {
	var params []signature.Type
	afterParam := false
	for {
		tok, err := p.expect()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.Is(')'):
			return params, nil
		case tok.Is(',') && afterParam:
			afterParam = false
		case tok.Kind == Literal:
			t, err := p.parseType(tok)
			if err != nil {
				return nil, err
			}
			params = append(params, t)
			afterParam = true
		default:
			return nil, p.errorf(tok, "Expected ) after method parameters, found %s at %s", tok, tok.Position())
		}
	}
}

func (p *parser) tweakList(ctx *tweaks.ParseContext) ([]tweaks.Tweak, error) {
	var result []tweaks.Tweak
	for {
		start, err := p.expect()
		if err != nil {
			return nil, err
		}
		if start.Kind == Punct {
			if !start.Is('}') {
				return nil, p.errorf(start, "Expected } to end rule list, found %s at %s", start, start.Position())
			}
			return result, nil
		}
		t, err := p.tweak(start, ctx)
		if err != nil {
			return nil, err
		}
		if t != nil {
			result = append(result, t)
		}
	}
}

// tweak reads one rule invocation whose id token has already been consumed.
// It returns nil for an unknown rule when skip-unknown is set.
func (p *parser) tweak(start Token, ctx *tweaks.ParseContext) (tweaks.Tweak, error) {
	args := []string{start.Value}
	named := make(map[string]string)
	canName := false // the id itself can never become a named key
	lastKey := start
	for {
		tok, err := p.expect()
		if err != nil {
			return nil, err
		}
		if tok.Kind == Literal {
			lastKey = tok
			args = append(args, tok.Value)
			canName = true
			continue
		}
		if tok.Is('=') && canName {
			value, err := p.expectLiteral("named arg value")
			if err != nil {
				return nil, err
			}
			key := args[len(args)-1]
			args = args[:len(args)-1]
			if _, dup := named[key]; dup {
				return nil, p.errorf(lastKey, "Duplicate named arg %s at %s", lastKey, lastKey.Position())
			}
			named[key] = value.Value
			canName = false
			continue
		}
		if !tok.Is(';') {
			return nil, p.errorf(tok, "Expected ; to end rule args, found %s at %s", tok, tok.Position())
		}
		break
	}

	t, err := p.registry.Parse(ctx, args, named)
	if err != nil {
		msg := err.Error()
		code := errors.RuleValidation
		if e, ok := err.(*errors.Error); ok {
			msg, code = e.Message, e.Code
		}
		return nil, errors.Newf(code, "Invalid rule %s at %s: %s", args[0], start.Position(), msg).At(start.Line, start.Column)
	}
	if t == nil && !ctx.HasMetadata(SkipUnknown) {
		return nil, errors.Newf(errors.UnknownRule,
			"Unknown rule %s at %s. Use %s; at the top of the file to skip it.", start, start.Position(), SkipUnknown).
			At(start.Line, start.Column).
			WithDetails(start.Value)
	}
	if t == nil {
		p.set.AddSkipped(start.Value)
	}
	return t, nil
}

func (p *parser) parseType(tok Token) (signature.Type, error) {
	t, err := signature.ParseType(tok.Value)
	if err != nil {
		return nil, p.wrapf(tok, err, "Invalid type %s at %s", tok, tok.Position())
	}
	return t, nil
}

func (p *parser) expect() (Token, error) {
	tok, ok, err := p.tz.Next()
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, errors.New(errors.Syntax, "Unexpected EOF in tweaks file").At(p.last.Line, p.last.Column)
	}
	p.last = tok
	return tok, nil
}

func (p *parser) expectLiteral(what string) (Token, error) {
	tok, err := p.expect()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != Literal {
		return Token{}, p.errorf(tok, "Expected %s, found %s at %s", what, tok, tok.Position())
	}
	return tok, nil
}

func (p *parser) expectPunct(c rune, after string) (Token, error) {
	tok, err := p.expect()
	if err != nil {
		return Token{}, err
	}
	if !tok.Is(c) {
		return Token{}, p.errorf(tok, "Expected %c after %s, found %s at %s", c, after, tok, tok.Position())
	}
	return tok, nil
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) *errors.Error {
	return errors.Newf(errors.Syntax, format, args...).At(tok.Line, tok.Column)
}

func (p *parser) wrapf(tok Token, cause error, format string, args ...interface{}) *errors.Error {
	return errors.Wrap(errors.Syntax, fmt.Sprintf(format, args...), cause).At(tok.Line, tok.Column)
}

func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
