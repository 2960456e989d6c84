package guixml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
	"github.com/aie-tools/aiec/internal/core/usecases"
)

// LoadString parses a GUI-XML document held in memory, as produced by
// Serialize(p).Write().
func LoadString(xml string) (*hlir.Program, error) {
	root, err := xmlnode.ParseString(xml)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// Load parses a GUI-XML <Module> tree back into a Program via a
// ProgramBuilder, completing the round-trip law.
func Load(root *xmlnode.Element) (*hlir.Program, error) {
	if root.Tag != "Module" {
		return nil, fmt.Errorf("guixml: expected root <Module>, got <%s>", root.Tag)
	}
	name := root.AttrOr("name", "program")
	b := usecases.NewProgramBuilder(name)

	if tiles := root.Find("Tiles"); tiles != nil {
		loadTiles(b, tiles)
	}
	if symbols := root.Find("Symbols"); symbols != nil {
		loadSymbols(b, symbols)
	}
	if dataflow := root.Find("DataFlow"); dataflow != nil {
		loadDataFlow(b, dataflow)
	}
	if deviceAttr, ok := root.Attr("device"); ok && deviceAttr != "" {
		rtName := "sequence"
		if dataflow := root.Find("DataFlow"); dataflow != nil {
			if rtEl := dataflow.Find("Runtime"); rtEl != nil {
				rtName = rtEl.AttrOr("name", rtName)
			}
		}
		b.Runtime(rtName).SetDevice(hlir.Device(deviceAttr))
	}
	return b.Build()
}

func loadTiles(b *usecases.ProgramBuilder, tiles *xmlnode.Element) {
	for _, t := range tiles.FindAll("Tile") {
		x, _ := strconv.Atoi(t.AttrOr("x", "0"))
		y, _ := strconv.Atoi(t.AttrOr("y", "0"))
		b.AddTile(t.AttrOr("name", ""), hlir.TileKind(t.AttrOr("kind", "compute")), x, y, nil)
	}
}

func loadSymbols(b *usecases.ProgramBuilder, symbols *xmlnode.Element) {
	for _, c := range symbols.FindAll("Const") {
		name := c.AttrOr("name", "")
		kind := c.AttrOr("type", "string")
		b.AddConstant(name, parseConstValue(kind, c.Text), nil)
	}
	for _, ta := range symbols.FindAll("TypeAbstraction") {
		name := ta.AttrOr("name", "")
		nd := ta.Find("ndarray")
		if nd == nil {
			continue
		}
		shapeText := nd.Find("shape").Text
		dtype := nd.Find("dtype").Text
		kind, err := types.ParseScalarKind(dtype)
		if err != nil {
			kind = types.Int32
		}
		tt := types.TensorType{Kind: kind}
		for _, part := range strings.Split(shapeText, "*") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			tt.Dims = append(tt.Dims, types.ParseDimExpr(part))
		}
		b.AddTensorType(name, tt, nil)
	}
}

func parseConstValue(kind, text string) any {
	switch kind {
	case "int":
		n, _ := strconv.ParseInt(text, 10, 64)
		return n
	case "float":
		f, _ := strconv.ParseFloat(text, 64)
		return f
	default:
		return text
	}
}

func loadDataFlow(b *usecases.ProgramBuilder, dataflow *xmlnode.Element) {
	for _, el := range dataflow.FindAll("ExternalFunction") {
		k := hlir.ExternalKernel{
			Name:       el.AttrOr("name", ""),
			SourceFile: el.AttrOr("source_file", ""),
		}
		for _, at := range el.FindAll("arg_type") {
			k.ArgTypes = append(k.ArgTypes, types.RefName(at.Text))
		}
		for _, inc := range el.FindAll("include_dir") {
			k.IncludeDirs = append(k.IncludeDirs, inc.Text)
		}
		b.AddExternalKernel(k, nil)
	}

	for _, el := range dataflow.FindAll("CoreFunction") {
		fn := hlir.CoreFunction{Name: el.AttrOr("name", ""), LoopCount: el.AttrOr("loop_count", "")}
		if params := el.Find("parameters"); params != nil {
			for _, p := range params.FindAll("param") {
				fn.Parameters = append(fn.Parameters, p.AttrOr("name", ""))
			}
		}
		if body := el.Find("body"); body != nil {
			fn.Body = loadStatements(body)
		}
		b.AddCoreFunction(fn, nil)
	}

	for _, el := range dataflow.FindAll("ObjectFifo") {
		depth, _ := strconv.Atoi(el.AttrOr("depth", "1"))
		f := hlir.ObjectFifo{
			Name:     el.AttrOr("name", ""),
			ObjType:  types.RefName(el.AttrOr("obj_type", "")),
			Depth:    depth,
			Producer: el.AttrOr("producer", ""),
		}
		for _, c := range el.FindAll("consumer") {
			f.Consumers = append(f.Consumers, c.AttrOr("tile", ""))
		}
		b.AddObjectFifo(f.Name, f.ObjType, f.Depth, f.Producer, f.Consumers, nil)
	}

	for _, el := range dataflow.FindAll("ObjectFifoSplit") {
		op := hlir.SplitOperation{
			Name:      el.AttrOr("name", ""),
			Source:    el.AttrOr("source", ""),
			Placement: el.AttrOr("placement", ""),
		}
		for _, out := range el.FindAll("output") {
			op.OutputNames = append(op.OutputNames, out.AttrOr("name", ""))
			op.Offsets = append(op.Offsets, types.ParseDimExpr(out.AttrOr("offset", "0")))
			if t, ok := out.Attr("type"); ok {
				op.OutputTypes = append(op.OutputTypes, types.RefName(t))
			}
		}
		op.NumOutputs = len(op.OutputNames)
		b.AddSplit(op, nil)
	}

	for _, el := range dataflow.FindAll("ObjectFifoJoin") {
		op := hlir.JoinOperation{
			Name:      el.AttrOr("name", ""),
			Dest:      el.AttrOr("dest", ""),
			Placement: el.AttrOr("placement", ""),
		}
		for _, in := range el.FindAll("input") {
			op.InputNames = append(op.InputNames, in.AttrOr("name", ""))
			op.Offsets = append(op.Offsets, types.ParseDimExpr(in.AttrOr("offset", "0")))
			if t, ok := in.Attr("type"); ok {
				op.InputTypes = append(op.InputTypes, types.RefName(t))
			}
		}
		op.NumInputs = len(op.InputNames)
		b.AddJoin(op, nil)
	}

	for _, el := range dataflow.FindAll("ObjectFifoForward") {
		b.AddForward(hlir.ForwardOperation{
			Name:      el.AttrOr("name", ""),
			Source:    el.AttrOr("source", ""),
			Placement: el.AttrOr("placement", ""),
		}, nil)
	}

	for _, el := range dataflow.FindAll("Worker") {
		w := hlir.Worker{
			Name:      el.AttrOr("name", ""),
			CoreFn:    el.AttrOr("core_fn", ""),
			Placement: el.AttrOr("placement", ""),
		}
		for _, arg := range el.FindAll("fn_arg") {
			if fifo, ok := arg.Attr("fifo"); ok {
				binding := &hlir.FifoBinding{Fifo: fifo, Mode: hlir.FifoMode(arg.AttrOr("mode", "consumer"))}
				if idxStr, ok := arg.Attr("index"); ok {
					idx, _ := strconv.Atoi(idxStr)
					binding.Index = &idx
				}
				w.FnArgs = append(w.FnArgs, hlir.WorkerArg{Binding: binding})
			} else {
				w.FnArgs = append(w.FnArgs, hlir.WorkerArg{SymbolRef: arg.AttrOr("symbol", "")})
			}
		}
		b.AddWorker(w, nil)
	}

	if rtEl := dataflow.Find("Runtime"); rtEl != nil {
		loadRuntime(b, rtEl)
	}
}

func loadStatements(body *xmlnode.Element) []hlir.Statement {
	var out []hlir.Statement
	for _, c := range body.Children {
		switch c.Tag {
		case "Acquire":
			idx, _ := strconv.Atoi(c.AttrOr("index", "0"))
			out = append(out, hlir.Statement{Kind: hlir.StmtAcquire, Target: c.AttrOr("target", ""), Index: idx})
		case "Release":
			idx, _ := strconv.Atoi(c.AttrOr("index", "0"))
			out = append(out, hlir.Statement{Kind: hlir.StmtRelease, Target: c.AttrOr("target", ""), Index: idx})
		case "KernelCall":
			stmt := hlir.Statement{Kind: hlir.StmtKernelCall, KernelName: c.AttrOr("name", "")}
			for _, a := range c.FindAll("arg") {
				stmt.Args = append(stmt.Args, a.Text)
			}
			out = append(out, stmt)
		case "For", "ZeroInitLoop":
			kind := hlir.StmtFor
			if c.Tag == "ZeroInitLoop" {
				kind = hlir.StmtZeroInitLoop
			}
			out = append(out, hlir.Statement{
				Kind: kind, LoopVar: c.AttrOr("var", "_"), RangeExpr: c.AttrOr("range", ""),
				Body: loadStatements(c),
			})
		case "Assign":
			out = append(out, hlir.Statement{Kind: hlir.StmtAssign, AssignVar: c.AttrOr("name", ""), AssignExpr: c.AttrOr("value", "")})
		}
	}
	return out
}

func loadRuntime(b *usecases.ProgramBuilder, rtEl *xmlnode.Element) {
	rt := b.Runtime(rtEl.AttrOr("name", "sequence"))
	rt.SetVerify(hlir.VerifyPolicy(rtEl.AttrOr("verify", "")))
	seq := rtEl.Find("Sequence")
	if seq == nil {
		return
	}
	var inputs, outputs []types.TypeRef
	var params []string
	for _, in := range seq.FindAll("input") {
		inputs = append(inputs, types.RefName(in.AttrOr("type", "")))
	}
	for _, out := range seq.FindAll("output") {
		outputs = append(outputs, types.RefName(out.AttrOr("type", "")))
	}
	for _, p := range seq.FindAll("param") {
		params = append(params, p.AttrOr("name", ""))
	}
	rt.SetSignature(inputs, outputs, params)

	if start := seq.Find("Start"); start != nil {
		for _, w := range start.FindAll("worker") {
			rt.StartWorker(w.AttrOr("name", ""))
		}
	}
	for _, c := range seq.Children {
		switch c.Tag {
		case "Fill":
			rt.Fill(c.AttrOr("placement", ""), c.AttrOr("fifo", ""), c.AttrOr("host_param", ""), loadTap(c))
		case "Drain":
			wait := c.AttrOr("wait", "false") == "true"
			rt.Drain(c.AttrOr("placement", ""), c.AttrOr("fifo", ""), c.AttrOr("host_param", ""), loadTap(c), wait)
		}
	}
}

func loadTap(opEl *xmlnode.Element) *hlir.TensorAccessPattern {
	tapEl := opEl.Find("TensorAccessPattern")
	if tapEl == nil {
		return nil
	}
	tap := &hlir.TensorAccessPattern{}
	if dims := tapEl.Find("tensor_dims"); dims != nil {
		for _, d := range dims.FindAll("dim") {
			tap.TensorDims = append(tap.TensorDims, types.ParseDimExpr(d.Text))
		}
	}
	if off := tapEl.Find("offset"); off != nil {
		tap.Offset = types.ParseDimExpr(off.Text)
	}
	if sizes := tapEl.Find("sizes"); sizes != nil {
		for _, d := range sizes.FindAll("dim") {
			tap.Sizes = append(tap.Sizes, types.ParseDimExpr(d.Text))
		}
	}
	if strides := tapEl.Find("strides"); strides != nil {
		for _, d := range strides.FindAll("dim") {
			tap.Strides = append(tap.Strides, types.ParseDimExpr(d.Text))
		}
	}
	return tap
}
