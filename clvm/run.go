// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"errors"
	"fmt"
)

// MaxBlockCost is the cost limit of a whole block, which also bounds the
// execution of any single spend.
const MaxBlockCost = 11_000_000_000

// Flags alter how programs are run.
type Flags uint32

const (
	// FlagStrict rejects operators the interpreter does not know instead
	// of charging them through the generic unknown operator cost formula.
	FlagStrict Flags = 1 << iota
)

// Reduction is the result of running a program: the cost consumed and the
// value produced.
type Reduction struct {
	Cost   uint64
	Result *SExp
}

// operation is an entry of the interpreter's op stack.
type operation uint8

const (
	operationApply operation = iota
	operationCons
	operationSwapEval
)

// machine evaluates a program with an explicit value stack and op stack so
// that deeply recursive programs never grow the Go stack.
type machine struct {
	vals  []*SExp
	ops   []operation
	flags Flags
}

func (m *machine) push(v *SExp) {
	m.vals = append(m.vals, v)
}

func (m *machine) pop() (*SExp, error) {
	if len(m.vals) == 0 {
		return nil, evalErr(nil, "value stack empty")
	}
	v := m.vals[len(m.vals)-1]
	m.vals = m.vals[:len(m.vals)-1]
	return v, nil
}

// Run evaluates program against env.  The run fails with ErrCostExceeded as
// soon as the accumulated cost goes past maxCost.
func Run(program, env *SExp, maxCost uint64, flags Flags) (*Reduction, error) {
	m := &machine{flags: flags}

	cost, err := m.evalPair(program, env)
	if err != nil {
		return nil, err
	}

	for {
		if cost > maxCost {
			return nil, fmt.Errorf("%w: %d > %d", ErrCostExceeded,
				cost, maxCost)
		}
		if len(m.ops) == 0 {
			break
		}

		op := m.ops[len(m.ops)-1]
		m.ops = m.ops[:len(m.ops)-1]

		var stepCost uint64
		switch op {
		case operationApply:
			stepCost, err = m.apply(maxCost - cost)
		case operationCons:
			err = m.cons()
		case operationSwapEval:
			stepCost, err = m.swapEval()
		}
		if err != nil {
			if errors.Is(err, ErrCostExceeded) {
				return nil, fmt.Errorf("%w: operator went over "+
					"its budget", ErrCostExceeded)
			}
			return nil, err
		}
		cost += stepCost
	}

	result, err := m.pop()
	if err != nil {
		return nil, err
	}

	log.Tracef("Program ran with cost %d", cost)

	return &Reduction{Cost: cost, Result: result}, nil
}

// evalPair schedules the evaluation of program in env.
func (m *machine) evalPair(program, env *SExp) (uint64, error) {
	// An atom program is a path into the environment.
	if program.IsAtom() {
		value, cost, err := traversePath(program.atom, env)
		if err != nil {
			return 0, err
		}
		m.push(value)
		return cost, nil
	}

	operator, operands := program.left, program.right

	// The ((X) . args) form applies X to the unevaluated arguments.
	if operator.IsPair() {
		inner, rest := operator.left, operator.right
		if !rest.IsNil() {
			return 0, evalErr(program, "in the ((X)...) syntax, "+
				"the inner list takes exactly 1 argument")
		}
		m.push(inner)
		m.push(operands)
		m.ops = append(m.ops, operationApply)
		return applyCost, nil
	}

	if isAtom(operator, opQuote) {
		m.push(operands)
		return quoteCost, nil
	}

	m.ops = append(m.ops, operationApply)
	m.push(operator)

	list := operands
	for list.IsPair() {
		m.push(NewPair(list.left, env))
		m.ops = append(m.ops, operationCons, operationSwapEval)
		list = list.right
	}
	if !list.IsNil() {
		return 0, evalErr(operands, "bad operand list")
	}
	m.push(Nil)

	return opCost, nil
}

// swapEval evaluates the (program . env) pair sitting below the top of the
// value stack, keeping the top in place.
func (m *machine) swapEval() (uint64, error) {
	top, err := m.pop()
	if err != nil {
		return 0, err
	}
	pair, err := m.pop()
	if err != nil {
		return 0, err
	}
	m.push(top)

	return m.evalPair(pair.left, pair.right)
}

// cons joins the two topmost values.
func (m *machine) cons() error {
	first, err := m.pop()
	if err != nil {
		return err
	}
	rest, err := m.pop()
	if err != nil {
		return err
	}
	m.push(NewPair(first, rest))
	return nil
}

// apply runs the operator below the evaluated operand list on the stack.
func (m *machine) apply(budget uint64) (uint64, error) {
	operands, err := m.pop()
	if err != nil {
		return 0, err
	}
	operator, err := m.pop()
	if err != nil {
		return 0, err
	}
	if operator.IsPair() {
		return 0, evalErr(operator, "internal error")
	}

	if isAtom(operator, opApply) {
		args, err := exactArgs(operands, "apply", 2)
		if err != nil {
			return 0, err
		}
		cost, err := m.evalPair(args[0], args[1])
		if err != nil {
			return 0, err
		}
		return cost + applyCost, nil
	}

	cost, result, err := m.runOperator(operator, operands, budget)
	if err != nil {
		return 0, err
	}
	m.push(result)

	return cost, nil
}

// runOperator dispatches a native operator.
func (m *machine) runOperator(operator, args *SExp,
	budget uint64) (uint64, *SExp, error) {

	if f, ok := operators[string(operator.atom)]; ok {
		return f(args, budget)
	}

	if m.flags&FlagStrict != 0 {
		return 0, nil, evalErr(operator, "unimplemented operator")
	}

	return opUnknown(operator, args, budget)
}

// traversePath walks env following the bits of path from the least
// significant one, 0 selecting the first half of a pair and 1 the rest.  The
// most significant set bit terminates the walk.
func traversePath(path []byte, env *SExp) (*SExp, uint64, error) {
	firstNonZero := 0
	for firstNonZero < len(path) && path[firstNonZero] == 0 {
		firstNonZero++
	}

	cost := uint64(traverseBaseCost) +
		uint64(firstNonZero)*traverseCostPerZeroByte +
		traverseCostPerBit
	if firstNonZero == len(path) {
		return Nil, cost, nil
	}

	lastMask := byte(0x80)
	for path[firstNonZero]&lastMask == 0 {
		lastMask >>= 1
	}

	node := env
	byteIdx := len(path) - 1
	mask := byte(0x01)
	for byteIdx > firstNonZero || mask < lastMask {
		if node.IsAtom() {
			return nil, 0, evalErr(env, "path into atom")
		}
		if path[byteIdx]&mask != 0 {
			node = node.right
		} else {
			node = node.left
		}

		if mask == 0x80 {
			mask = 0x01
			byteIdx--
		} else {
			mask <<= 1
		}
		cost += traverseCostPerBit
	}

	return node, cost, nil
}

// exactArgs collects exactly n arguments from a proper list.
func exactArgs(args *SExp, name string, n int) ([]*SExp, error) {
	items, ok := args.ToList()
	if !ok || len(items) != n {
		suffix := "s"
		if n == 1 {
			suffix = ""
		}
		return nil, evalErrf(args, "%s takes exactly %d argument%s",
			name, n, suffix)
	}
	return items, nil
}

// atomArg requires node to be an atom.
func atomArg(node *SExp, name string) ([]byte, error) {
	if node.IsPair() {
		return nil, evalErrf(node, "%s on list", name)
	}
	return node.atom, nil
}
