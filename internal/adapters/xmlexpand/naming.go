package xmlexpand

import "strconv"

// fifoContext is the position of an ObjectFifo-like entity within the
// L3/L2/L1 memory hierarchy, carried as authoring metadata on the GUI
// XML element (context/data/column/[stage]/[worker] attributes).
type fifoContext struct {
	Context string // L3_L2, L2_L3, L2_L1, L1_L2, L1_L1
	Data    string
	Column  int
	Stage   string // L1_L1 only
	Worker  string // L1_L1 only
}

// canonicalName implements the naming algebra table: every FIFO-like
// entity carrying context/data/column (and, for L1_L1, stage/worker)
// metadata produces a deterministic canonical name.
func canonicalName(ctx fifoContext, workerCount int) string {
	if workerCount <= 0 {
		workerCount = workerGroupSize
	}
	col := strconv.Itoa(ctx.Column)
	switch ctx.Context {
	case "L3_L2":
		return "SHIM_L3_L2_" + workerTokens(ctx.Data, ctx.Column, workerCount) + "_col" + col
	case "L2_L3":
		return "SHIM_L2_L3_" + workerTokens(ctx.Data, ctx.Column, workerCount) + "_col" + col
	case "L2_L1":
		return "MEM_L2_L1_" + workerTokens(ctx.Data, ctx.Column, workerCount) + "_col" + col
	case "L1_L2":
		return "MEM_L1_L2_" + workerTokens(ctx.Data, ctx.Column, workerCount) + "_col" + col
	case "L1_L1":
		return "L1_L1_" + ctx.Stage + "_" + ctx.Worker
	default:
		return ctx.Data
	}
}

// workerTokens forms "<data><idx1><data><idx2>..." with idx_i = col*N+i
// for i in [0, N), N being the per-column worker count.
func workerTokens(data string, col, n int) string {
	tokens := ""
	for i := 0; i < n; i++ {
		idx := col*n + i
		tokens += data + strconv.Itoa(idx)
	}
	return tokens
}

// splitJoinChildName names the i-th (0-indexed, globally numbered)
// output/input FIFO of a split/join operation:
// "MEM_L{2_L1,1_L2}_<data><global_idx>_col<col>".
func splitJoinChildName(level, data string, globalIdx, col int) string {
	return "MEM_L" + level + "_" + data + strconv.Itoa(globalIdx) + "_col" + strconv.Itoa(col)
}
