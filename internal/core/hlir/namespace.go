package hlir

// Namespace partitions name uniqueness: a name may exist under multiple
// namespace tags simultaneously, but only once within a given tag.
type Namespace string

const (
	NsSymbol         Namespace = "symbol"
	NsTile           Namespace = "tile"
	NsFifo           Namespace = "fifo"
	NsExternalKernel Namespace = "external_kernel"
	NsCoreFunction   Namespace = "core_function"
	NsWorker         Namespace = "worker"
	NsFifoSplit      Namespace = "fifo_split"
	NsFifoJoin       Namespace = "fifo_join"
	NsFifoForward    Namespace = "fifo_forward"
	NsTensorType     Namespace = "tensor_type"
	NsConstant       Namespace = "constant"
	NsTensorTiler    Namespace = "tensor_tiler"
)
