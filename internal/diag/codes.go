package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Загрузка юнитов
	UnitInfo          Code = 1000
	UnitLoadError     Code = 1001
	UnitDecodeError   Code = 1002
	UnitBadExpression Code = 1003
	UnitUnknownFormat Code = 1004

	// Семантические
	SemaInfo                  Code = 3000
	SemaError                 Code = 3001
	SemaDuplicateSymbol       Code = 3002
	SemaUnresolvedSymbol      Code = 3003
	SemaNameIsNotType         Code = 3004
	SemaTypeMismatch          Code = 3005
	SemaConstNotConstant      Code = 3006
	SemaConstCycle            Code = 3007
	SemaIntLiteralOutOfRange  Code = 3008
	SemaInvalidBinaryOperands Code = 3009
	SemaInvalidUnaryOperand   Code = 3010
	SemaDivisionByZero        Code = 3011
	SemaNoOverload            Code = 3012
	SemaAmbiguousOverload     Code = 3013
	SemaArgCountMismatch      Code = 3014
	SemaIncompleteType        Code = 3015
	SemaRecursiveUnsized      Code = 3016
	SemaMemberNotFound        Code = 3017
	SemaEnumInvalidBaseType   Code = 3018
	SemaEnumValueOverflow     Code = 3019
	SemaMutRefRequired        Code = 3020
	SemaDuplicateField        Code = 3021
	SemaReturnMismatch        Code = 3022
	SemaNotCallable           Code = 3023

	// Шаблоны
	TplInfo                   Code = 4000
	TplUnusedParam            Code = 4001
	TplMandatoryAfterOptional Code = 4002
	TplParamRedefinition      Code = 4003
	TplParamShadows           Code = 4004
	TplParamOrder             Code = 4005
	TplInvalidValueParamType  Code = 4006
	TplRedefinition           Code = 4007
	TplDeductionFailed        Code = 4008
	TplExpectedConstant       Code = 4009
	TplInvalidArg             Code = 4010
	TplNoMatch                Code = 4011
	TplAmbiguous              Code = 4012
	TplContext                Code = 4013
	TplRecursiveAlias         Code = 4014
	TplDepthExceeded          Code = 4015
	TplArgCountMismatch       Code = 4016
	TplNotTemplate            Code = 4017

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		UnitInfo:                  "Unit information",
		UnitLoadError:             "Cannot load unit file",
		UnitDecodeError:           "Malformed unit file",
		UnitBadExpression:         "Malformed expression in unit file",
		UnitUnknownFormat:         "Unknown unit file format",
		SemaInfo:                  "Semantic information",
		SemaError:                 "Semantic error",
		SemaDuplicateSymbol:       "Duplicate symbol",
		SemaUnresolvedSymbol:      "Unresolved symbol",
		SemaNameIsNotType:         "Name is not a type",
		SemaTypeMismatch:          "Type mismatch",
		SemaConstNotConstant:      "Expression is not a compile-time constant",
		SemaConstCycle:            "Constant or alias cycle detected",
		SemaIntLiteralOutOfRange:  "Integer value out of range",
		SemaInvalidBinaryOperands: "Invalid operands for binary operator",
		SemaInvalidUnaryOperand:   "Invalid operand for unary operator",
		SemaDivisionByZero:        "Division by zero in constant expression",
		SemaNoOverload:            "No matching overload found",
		SemaAmbiguousOverload:     "Ambiguous overload resolution",
		SemaArgCountMismatch:      "Wrong number of arguments",
		SemaIncompleteType:        "Use of incomplete type",
		SemaRecursiveUnsized:      "Recursive value type has infinite size",
		SemaMemberNotFound:        "Member not found",
		SemaEnumInvalidBaseType:   "Invalid underlying type for enum",
		SemaEnumValueOverflow:     "Enum value overflow",
		SemaMutRefRequired:        "Mutable reference expected",
		SemaDuplicateField:        "Duplicate field",
		SemaReturnMismatch:        "Return value does not match function result",
		SemaNotCallable:           "Expression is not callable",
		TplInfo:                   "Template information",
		TplUnusedParam:            "Unused template parameter",
		TplMandatoryAfterOptional: "Mandatory signature parameter after optional one",
		TplParamRedefinition:      "Template parameter redefinition",
		TplParamShadows:           "Template parameter shadows an enclosing name",
		TplParamOrder:             "Template parameter type references a later parameter",
		TplInvalidValueParamType:  "Invalid type for template value parameter",
		TplRedefinition:           "Type template redefinition",
		TplDeductionFailed:        "Template arguments deduction failed",
		TplExpectedConstant:       "Expected compile-time constant",
		TplInvalidArg:             "Invalid template argument",
		TplNoMatch:                "No matching template",
		TplAmbiguous:              "Ambiguous template specialization",
		TplContext:                "Error in template instantiation",
		TplRecursiveAlias:         "Recursive type template alias",
		TplDepthExceeded:          "Template instantiation depth exceeded",
		TplArgCountMismatch:       "Wrong number of template arguments",
		TplNotTemplate:            "Name is not a template",
		ObsInfo:                   "Observability information",
		ObsTimings:                "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("UNT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
