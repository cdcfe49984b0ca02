package node

import (
	"fmt"
	"time"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/config"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
	"github.com/Convex-Labs/aineko-core/internal/datasets/fake"
)

// TestIteration captures one loop pass in yielding test runs: the value
// most recently consumed per input, the value most recently produced per
// output, and the node itself for state inspection.
type TestIteration struct {
	Consumed map[string]interface{}
	Produced map[string]interface{}
	Node     *Node
}

// EnableTestMode switches the node to dataset doubles. Once enabled,
// production handles are never touched.
func (n *Node) EnableTestMode() {
	n.test = true
}

// SetupTest wires the node with in-memory doubles: inputs pre-loaded with
// the supplied value sequences, outputs recording whatever the node
// produces. The reserved logging and reporting outputs are always wired.
func (n *Node) SetupTest(inputs map[string][]interface{}, outputs []string, params Params) error {
	if !n.test {
		return errors.ModeError("node is not in test mode, call EnableTestMode first")
	}

	n.inputs = make(map[string]datasets.Dataset, len(inputs))
	for name, values := range inputs {
		n.inputs[name] = fake.NewInput(name, n.name, values)
	}

	n.outputs = make(map[string]datasets.Dataset)
	for _, name := range outputs {
		n.outputs[name] = fake.NewOutput(name, n.name)
	}
	for _, name := range config.ReservedDatasets {
		if _, ok := n.outputs[name]; !ok {
			n.outputs[name] = fake.NewOutput(name, n.name)
		}
	}

	if params == nil {
		params = Params{}
	}
	n.params = params
	return nil
}

// RunTest drives the pre-hook, step loop and post-hook against the wired
// doubles. The loop terminates once the handler stops, or after at least
// one iteration when the optional runtime budget has elapsed or every
// input double is exhausted, whichever comes first. It returns, per
// output name, the full ordered sequence of produced values.
func (n *Node) RunTest(runtime time.Duration) (map[string][]interface{}, error) {
	if !n.test {
		return nil, errors.ModeError("node is not in test mode, call EnableTestMode first")
	}

	start := n.clk.Now()

	if hook, ok := n.handler.(PreLoopHook); ok {
		if err := hook.PreLoopHook(n, n.params); err != nil {
			return nil, err
		}
	}

	for cont := true; cont; {
		var err error
		cont, err = n.handler.Step(n, n.params)
		if err != nil {
			return nil, err
		}

		// The runtime budget keeps the loop alive past input exhaustion;
		// the exhaustion check runs only once the budget has elapsed.
		if runtime > 0 && n.clk.Now().Sub(start) < runtime {
			continue
		}
		if n.inputsExhausted() {
			cont = false
		}
	}

	if hook, ok := n.handler.(PostLoopHook); ok {
		if err := hook.PostLoopHook(n, n.params); err != nil {
			return nil, err
		}
	}

	return n.producedValues()
}

// RunTestYield drives the same lifecycle as RunTest but delivers one
// TestIteration per loop pass to the yield callback, supporting
// inspection of intermediate state. The callback may return false to stop
// the run early. The early-termination rule matches RunTest.
func (n *Node) RunTestYield(runtime time.Duration, yield func(TestIteration) bool) error {
	if !n.test {
		return errors.ModeError("node is not in test mode, call EnableTestMode first")
	}

	start := n.clk.Now()

	if hook, ok := n.handler.(PreLoopHook); ok {
		if err := hook.PreLoopHook(n, n.params); err != nil {
			return err
		}
	}

	for cont := true; cont; {
		consumed := make(map[string]interface{})
		for name, input := range n.inputs {
			if in, ok := input.(*fake.Input); ok {
				if remaining := in.Remaining(); len(remaining) > 0 {
					consumed[name] = remaining[0]
				}
			}
		}

		var err error
		cont, err = n.handler.Step(n, n.params)
		if err != nil {
			return err
		}

		if runtime <= 0 || n.clk.Now().Sub(start) >= runtime {
			if n.inputsExhausted() {
				cont = false
			}
		}

		produced := make(map[string]interface{})
		for name, output := range n.outputs {
			if out, ok := output.(*fake.Output); ok {
				if values := out.Values(); len(values) > 0 {
					produced[name] = values[len(values)-1]
				}
			}
		}

		if !yield(TestIteration{Consumed: consumed, Produced: produced, Node: n}) {
			break
		}
	}

	if hook, ok := n.handler.(PostLoopHook); ok {
		return hook.PostLoopHook(n, n.params)
	}
	return nil
}

// inputsExhausted reports whether every input double is empty. A node
// with no inputs never reports exhaustion; its loop ends on the handler's
// stop signal or the runtime budget.
func (n *Node) inputsExhausted() bool {
	if len(n.inputs) == 0 {
		return false
	}
	for _, input := range n.inputs {
		in, ok := input.(*fake.Input)
		if !ok || !in.Empty() {
			return false
		}
	}
	return true
}

func (n *Node) producedValues() (map[string][]interface{}, error) {
	results := make(map[string][]interface{}, len(n.outputs))
	for name, output := range n.outputs {
		out, ok := output.(*fake.Output)
		if !ok {
			return nil, errors.ModeError(fmt.Sprintf("output %s is not a test double", name))
		}
		results[name] = out.Values()
	}
	return results, nil
}
