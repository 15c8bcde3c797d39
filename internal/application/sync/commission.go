package sync

import (
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/shipsync/internal/domain/trade"
)

// LookupFunc provides read-only record access to commission formulas:
// lookup(doctype, name, field). Implementations must not mutate state.
type LookupFunc func(doctype, name, field string) (any, error)

// CommissionEvaluator evaluates store commission formulas in a sandboxed
// expression environment. Formulas see a read-only `doc` map of order
// fields plus flt() and lookup() helpers; they cannot reach anything
// else. Compiled programs are cached by formula text.
type CommissionEvaluator struct {
	env    *cel.Env
	logger *zap.Logger

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCommissionEvaluator builds the evaluation environment. lookup may
// be nil, in which case formulas calling lookup() fail evaluation.
func NewCommissionEvaluator(lookup LookupFunc, logger *zap.Logger) (*CommissionEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("doc", cel.MapType(cel.StringType, cel.DynType)),
		cel.Function("flt",
			cel.Overload("flt_dyn", []*cel.Type{cel.DynType}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					f, ok := toFloat(val)
					if !ok {
						return types.NewErr("flt: cannot convert %v to number", val.Value())
					}
					return types.Double(f)
				})),
			cel.Overload("flt_dyn_int", []*cel.Type{cel.DynType, cel.IntType}, cel.DoubleType,
				cel.BinaryBinding(func(val, precision ref.Val) ref.Val {
					f, ok := toFloat(val)
					if !ok {
						return types.NewErr("flt: cannot convert %v to number", val.Value())
					}
					p, ok := precision.Value().(int64)
					if !ok {
						return types.NewErr("flt: precision must be an integer")
					}
					scale := math.Pow10(int(p))
					return types.Double(math.Round(f*scale) / scale)
				})),
		),
		cel.Function("lookup",
			cel.Overload("lookup_string_string_string",
				[]*cel.Type{cel.StringType, cel.StringType, cel.StringType}, cel.DynType,
				cel.FunctionBinding(func(args ...ref.Val) ref.Val {
					if lookup == nil {
						return types.NewErr("lookup: no data source configured")
					}
					doctype, _ := args[0].Value().(string)
					name, _ := args[1].Value().(string)
					field, _ := args[2].Value().(string)
					value, err := lookup(doctype, name, field)
					if err != nil {
						return types.NewErr("lookup %s/%s.%s: %v", doctype, name, field, err)
					}
					return types.DefaultTypeAdapter.NativeToValue(value)
				})),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build commission environment: %w", err)
	}
	return &CommissionEvaluator{
		env:      env,
		logger:   logger,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate runs a formula against an order. The second return is false
// when the formula is empty or evaluation failed; failures are logged
// with the order's field dump and never abort ingestion.
func (e *CommissionEvaluator) Evaluate(formula string, order *trade.SalesOrder) (decimal.Decimal, bool) {
	if formula == "" {
		return decimal.Zero, false
	}

	doc := orderDoc(order)
	program, err := e.program(formula)
	if err != nil {
		e.logFailure(formula, order, doc, err)
		return decimal.Zero, false
	}

	out, _, err := program.Eval(map[string]any{"doc": doc})
	if err != nil {
		e.logFailure(formula, order, doc, err)
		return decimal.Zero, false
	}

	f, ok := toFloat(out)
	if !ok {
		e.logFailure(formula, order, doc, fmt.Errorf("formula returned non-numeric value %v", out.Value()))
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f).Round(2), true
}

func (e *CommissionEvaluator) program(formula string) (cel.Program, error) {
	e.mu.RLock()
	cached, ok := e.programs[formula]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	ast, issues := e.env.Compile(formula)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}

	e.mu.Lock()
	e.programs[formula] = program
	e.mu.Unlock()
	return program, nil
}

func (e *CommissionEvaluator) logFailure(formula string, order *trade.SalesOrder, doc map[string]any, err error) {
	e.logger.Error("commission formula evaluation failed",
		zap.String("carrier_order_id", order.CarrierOrderID),
		zap.String("formula", formula),
		zap.Any("doc", doc),
		zap.Error(err))
}

// orderDoc flattens the order into the field map formulas evaluate
// against
func orderDoc(order *trade.SalesOrder) map[string]any {
	return map[string]any{
		"carrier_order_id":        order.CarrierOrderID,
		"order_number":            order.OrderNumber,
		"store_id":                order.StoreID,
		"marketplace":             order.Marketplace,
		"currency":                order.Currency,
		"total":                   order.Total.InexactFloat64(),
		"total_taxes_and_charges": order.TotalTaxesAndCharges.InexactFloat64(),
		"discount_amount":         order.DiscountAmount.InexactFloat64(),
		"grand_total":             order.GrandTotal.InexactFloat64(),
		"amount_paid":             order.AmountPaid.InexactFloat64(),
		"total_qty":               int64(order.TotalQuantity()),
	}
}

func toFloat(val ref.Val) (float64, bool) {
	switch v := val.Value().(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
