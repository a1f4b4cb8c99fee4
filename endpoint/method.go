package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"unicode"
)

var typeOfError = reflect.TypeOf((*error)(nil)).Elem()
var typeOfContext = reflect.TypeOf((*context.Context)(nil)).Elem()
var typeOfReply = reflect.TypeOf(Reply(nil))

// Reply completes an inbound call from a registered method. A method whose
// last parameter is a Reply responds by calling it, instead of through its
// return values.
type Reply func(err error, results ...interface{})

// Inbound maps method names to handlers.
type Inbound map[string]Handler

// Register adds valid methods from the receiver to the inbound set with the
// given prefix. Method names are lowercased.
func (in Inbound) Register(prefix string, receiver interface{}) error {
	methods, err := Methods(receiver)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for name, m := range methods {
		buf.WriteString(prefix)
		buf.WriteRune(unicode.ToLower(rune(name[0])))
		buf.WriteString(name[1:])
		in[buf.String()] = m
		buf.Reset()
	}
	return nil
}

// RegisterMethod adds a single method of the receiver under name.
func (in Inbound) RegisterMethod(name string, receiver interface{}, methodName string) error {
	m, err := MethodByName(receiver, methodName)
	if err != nil {
		return err
	}
	in[name] = m
	return nil
}

// methodArgTypes returns the arg types and whether all the types are valid
// (exported or builtin).
func methodArgTypes(methodType reflect.Type) (argTypes []reflect.Type, hasCtx bool, hasReply bool, ok bool) {
	argNum := methodType.NumIn()
	argTypes = make([]reflect.Type, 0, argNum-1)
	argPos := 1 // Skip receiver
	for ; argPos < argNum; argPos++ {
		argType := methodType.In(argPos)
		if !isExportedOrBuiltin(argType) {
			return nil, hasCtx, hasReply, false
		}
		if argType == typeOfContext && argPos == 1 {
			hasCtx = true
			continue
		}
		if argType == typeOfReply {
			if argPos != argNum-1 {
				// Reply must be last
				return nil, hasCtx, hasReply, false
			}
			hasReply = true
			continue
		}
		argTypes = append(argTypes, argType)
	}
	return argTypes, hasCtx, hasReply, true
}

// methodErrPos returns the return value index position of an error type for
// supported return layouts: (), (interface{}), (error), (interface{}, error)
func methodErrPos(methodType reflect.Type) (int, bool) {
	switch methodType.NumOut() {
	case 0:
		return -1, true
	case 1:
		if methodType.Out(0) == typeOfError {
			// Single error return value
			return 0, true
		}
		// Single non-error return value
		return -1, true
	case 2:
		if methodType.Out(1) == typeOfError {
			// Two return values, one error type
			return 1, true
		}
		// Two return values, no error type, unsupported.
		return -1, false
	}
	return -1, false
}

// Methods returns a mapping of valid method names to Method definitions for a
// instance's receiver.
func Methods(receiver interface{}) (map[string]*Method, error) {
	kind := reflect.TypeOf(receiver)
	val := reflect.ValueOf(receiver)
	if name := reflect.Indirect(val).Type().Name(); !isExported(name) {
		return nil, fmt.Errorf("receiver must be exported: %s", name)
	}

	methods := map[string]*Method{}
	for i := 0; i < kind.NumMethod(); i++ {
		method := kind.Method(i)
		if method.PkgPath != "" {
			// Skip unexported methods
			continue
		}
		m, err := newMethod(val, method)
		if err == errSkipMethod {
			continue
		} else if err != nil {
			return nil, err
		}
		methods[method.Name] = m
	}

	return methods, nil
}

// MethodByName returns a single Method definition for the receiver.
func MethodByName(receiver interface{}, name string) (*Method, error) {
	method, ok := reflect.TypeOf(receiver).MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("method not found: %s", name)
	}
	m, err := newMethod(reflect.ValueOf(receiver), method)
	if err == errSkipMethod {
		return nil, fmt.Errorf("method has unsupported argument types: %s", name)
	}
	return m, err
}

var errSkipMethod = errors.New("skip method")

func newMethod(receiver reflect.Value, method reflect.Method) (*Method, error) {
	// Load arg types (skip first arg, the receiver)
	argTypes, hasCtx, hasReply, ok := methodArgTypes(method.Type)
	if !ok {
		// Skip methods with unexported arg types
		return nil, errSkipMethod
	}

	// Find ErrPos, if any.
	errPos, ok := methodErrPos(method.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported return values in method: %s", method.Name)
	}

	return &Method{
		Receiver: receiver,
		Method:   method,
		ArgTypes: argTypes,
		ErrPos:   errPos,
		HasCtx:   hasCtx,
		HasReply: hasReply,
	}, nil
}

var _ Handler = &Method{}

// Method is the definition of a callable method.
type Method struct {
	Receiver reflect.Value
	Method   reflect.Method
	ArgTypes []reflect.Type
	ErrPos   int
	HasCtx   bool
	HasReply bool
}

// Handle decodes the call's params and invokes the method.
func (m *Method) Handle(call *Call) (Result, error) {
	args, err := parsePositionalArguments(call.Params, m.ArgTypes)
	if err != nil {
		return Void, InvalidParamsError{call.Method, err}
	}
	var done Reply
	if m.HasReply {
		done = func(err error, results ...interface{}) {
			call.Done(err, results...)
		}
	}
	return m.Call(call.Context(), args, done)
}

// Call executes the method with the given arguments.
func (m *Method) Call(ctx context.Context, args []reflect.Value, done Reply) (Result, error) {
	if len(args) != len(m.ArgTypes) {
		return Void, fmt.Errorf("invalid number of args: expected %d, got %d", len(m.ArgTypes), len(args))
	}

	arguments := []reflect.Value{m.Receiver}
	if m.HasCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		arguments = append(arguments, reflect.ValueOf(ctx))
	}
	if len(args) > 0 {
		arguments = append(arguments, args...)
	}
	if m.HasReply {
		if done == nil {
			done = func(error, ...interface{}) {}
		}
		arguments = append(arguments, reflect.ValueOf(done))
	}

	reply := m.Method.Func.Call(arguments)

	// Is there an error return value?
	if m.ErrPos >= 0 && !reply[m.ErrPos].IsNil() {
		return Void, reply[m.ErrPos].Interface().(error)
	}
	// Are there any result values? This supports (), (err), (res), (res, err)
	if len(reply) == 0 || m.ErrPos == 0 {
		if m.HasReply {
			return Void, nil
		}
		return Value(nil), nil
	}

	res := reply[0]
	if isNilValue(res) {
		return Value(nil), nil
	}
	if f, ok := res.Interface().(Future); ok {
		return Later(f), nil
	}
	return Value(res.Interface()), nil
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// parsePositionalArguments decodes each positional argument into the
// reflected value of its type. Missing trailing arguments are zero values.
func parsePositionalArguments(params Params, types []reflect.Type) ([]reflect.Value, error) {
	if len(params) > len(types) {
		return nil, fmt.Errorf("too many arguments: expected %d, got %d", len(types), len(params))
	}

	values := make([]reflect.Value, 0, len(types))
	for i, t := range types {
		value := reflect.New(t)
		if i < len(params) {
			if err := json.Unmarshal(params[i], value.Interface()); err != nil {
				return nil, fmt.Errorf("argument %d: %s", i, err)
			}
		}
		values = append(values, value.Elem())
	}
	return values, nil
}
