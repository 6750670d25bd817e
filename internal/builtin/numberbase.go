package builtin

import (
	"strconv"
	"strings"

	"github.com/Gaming32/syntax-tweaker/internal/errors"
	"github.com/Gaming32/syntax-tweaker/internal/signature"
	"github.com/Gaming32/syntax-tweaker/internal/tweaks"
)

// NumberBaseID is the rule id of the number-base rule.
const NumberBaseID = "number-base"

// Base is a radix an integer literal can be written in.
type Base int

const (
	Hex Base = iota
	Bin
	Oct
	Dec
)

var bases = [...]struct {
	name     string
	prefix   string
	radix    int
	useMinus bool
}{
	Hex: {"hex", "0x", 16, false},
	Bin: {"bin", "0b", 2, false},
	Oct: {"oct", "0", 8, true},
	Dec: {"dec", "", 10, true},
}

func (b Base) String() string {
	return bases[b].name
}

// ParseBase matches a base name case-insensitively.
func ParseBase(s string) (Base, error) {
	for i, info := range bases {
		if strings.EqualFold(s, info.name) {
			return Base(i), nil
		}
	}
	return 0, errors.Newf(errors.RuleValidation, "Unknown number base %q (expected hex, bin, oct or dec)", s)
}

// DetectBase returns the base a literal is written in. A lone 0 counts as
// octal.
func DetectBase(literal string) Base {
	lower := strings.ToLower(literal)
	switch {
	case strings.HasPrefix(lower, "0x"):
		return Hex
	case strings.HasPrefix(lower, "0b"):
		return Bin
	case strings.HasPrefix(lower, "0"):
		return Oct
	}
	return Dec
}

// NumberBase rewrites the integer literals assigned to a field, or passed
// as one parameter of a method, into a target base.
type NumberBase struct {
	Member signature.MemberReference
	Target Base
	// TargetVariables follows local variables and parameters back to their
	// initializers and assignments.
	TargetVariables bool
	// Param is the argument index for methods and -1 for fields.
	Param int
}

// NewNumberBase is the factory for `number-base BASE TARGET_VARIABLES [PARAM]`.
func NewNumberBase(ctx *tweaks.ParseContext) (tweaks.Tweak, error) {
	if len(ctx.Args) == 0 {
		return nil, errors.New(errors.RuleValidation, "Missing targetBase")
	}
	target, err := ParseBase(ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if len(ctx.Args) < 2 {
		return nil, errors.New(errors.RuleValidation, "Missing targetVariables")
	}
	var targetVariables bool
	switch ctx.Args[1] {
	case "true":
		targetVariables = true
	case "false":
	default:
		return nil, errors.Newf(errors.RuleValidation, "targetVariables must be true or false (was %q)", ctx.Args[1])
	}

	if ctx.Member == nil {
		return nil, errors.New(errors.RuleValidation, "Only applicable to members")
	}
	param := -1
	switch ctx.Kind {
	case tweaks.FieldRef:
		if len(ctx.Args) > 2 {
			return nil, errors.Newf(errors.RuleValidation, "%s is a field, but parameter is %s", ctx.Member, ctx.Args[2])
		}
	case tweaks.MethodRef:
		if len(ctx.Args) < 3 {
			return nil, errors.New(errors.RuleValidation, "Parameter index required when targeting a method")
		}
		param, err = strconv.Atoi(ctx.Args[2])
		if err != nil {
			return nil, errors.Newf(errors.RuleValidation, "Invalid parameter index %q", ctx.Args[2])
		}
		method := ctx.Member.Type.(signature.Method)
		if param < 0 || param >= len(method.Params) {
			return nil, errors.Newf(errors.RuleValidation, "Parameter %d out of bounds for %s", param, method)
		}
	default:
		return nil, errors.New(errors.RuleValidation, "Only applicable to members")
	}
	if len(ctx.Args) > 3 {
		return nil, errors.Newf(errors.RuleValidation, "Too many arguments to %s", NumberBaseID)
	}

	return &NumberBase{
		Member:          *ctx.Member,
		Target:          target,
		TargetVariables: targetVariables,
		Param:           param,
	}, nil
}

func (t *NumberBase) ID() string { return NumberBaseID }

func (t *NumberBase) Supports() tweaks.KindSet {
	return tweaks.Kinds(tweaks.FieldRef, tweaks.MethodRef)
}

func (t *NumberBase) SerializeArgs() []string {
	args := []string{t.Target.String(), strconv.FormatBool(t.TargetVariables)}
	if t.Param >= 0 {
		args = append(args, strconv.Itoa(t.Param))
	}
	return args
}

func (t *NumberBase) SerializeNamedArgs() map[string]string { return nil }

// Convert renders an integer literal in target. negative folds a preceding
// unary minus into the value. ok is false when literal is not an integer
// literal, is out of range, or is already written in target.
//
// Hex and bin write negative values as the two's complement bit pattern of
// the literal's width; oct and dec keep the sign. A long suffix is kept.
func Convert(literal string, negative bool, target Base) (out string, ok bool) {
	digits := strings.ReplaceAll(literal, "_", "")
	suffix := ""
	if n := len(digits); n > 0 && (digits[n-1] == 'l' || digits[n-1] == 'L') {
		suffix = digits[n-1:]
		digits = digits[:n-1]
	}
	if digits == "" {
		return "", false
	}
	initial := DetectBase(digits)
	if initial == target {
		return "", false
	}

	body := digits
	switch initial {
	case Hex, Bin:
		body = digits[2:]
	case Oct:
		body = digits[1:]
		if body == "" {
			body = "0"
		}
	}
	mag, err := strconv.ParseUint(body, bases[initial].radix, 64)
	if err != nil {
		return "", false
	}

	var value int64
	var unsigned uint64
	if suffix == "" {
		if mag > 0xFFFFFFFF {
			return "", false
		}
		v := int32(uint32(mag))
		if negative {
			v = -v
		}
		value, unsigned = int64(v), uint64(uint32(v))
	} else {
		v := int64(mag)
		if negative {
			v = -v
		}
		value, unsigned = v, uint64(v)
	}

	info := bases[target]
	var b strings.Builder
	switch {
	case value < 0 && !info.useMinus:
		b.WriteString(info.prefix)
		b.WriteString(strconv.FormatUint(unsigned, info.radix))
	case value == 0 && target == Oct:
		b.WriteString("0")
	default:
		abs := strconv.FormatInt(value, info.radix)
		if value < 0 {
			b.WriteByte('-')
			abs = abs[1:]
		}
		b.WriteString(info.prefix)
		b.WriteString(abs)
	}
	b.WriteString(suffix)
	return b.String(), true
}
