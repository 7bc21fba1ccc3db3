package mcp

// --- Link status tool ---

// LinkStatusInput is the input for the squid_link_status tool.
type LinkStatusInput struct{}

// LinkStatusOutput is the output for the squid_link_status tool.
type LinkStatusOutput struct {
	LinkUp bool `json:"link_up" jsonschema:"description=Whether the engine considers the link Connected"`
}

// --- Stats tool ---

// StatsInput is the input for the squid_stats tool.
type StatsInput struct{}

// StatsOutput is the output for the squid_stats tool.
type StatsOutput struct {
	LinkUp     bool   `json:"link_up" jsonschema:"description=Whether the engine considers the link Connected"`
	RxFrames   uint64 `json:"rx_frames" jsonschema:"description=Frames received and validated"`
	TxFrames   uint64 `json:"tx_frames" jsonschema:"description=Frames emitted, including resends"`
	CRCErrors  uint64 `json:"crc_errors" jsonschema:"description=Frames dropped for a bad sentinel or checksum"`
	Duplicates uint64 `json:"duplicates" jsonschema:"description=DATA frames received with an already-accepted sequence bit"`
	Drops      uint64 `json:"drops" jsonschema:"description=Accepted DATA frames whose payload could not be queued"`
	Timeouts   uint64 `json:"timeouts" jsonschema:"description=Retransmission timer expirations"`
	Resends    uint64 `json:"resends" jsonschema:"description=Frames re-emitted byte-identical to the last send"`
}

// --- Open channel tool ---

// OpenChannelInput is the input for the squid_open tool.
type OpenChannelInput struct{}

// OpenChannelOutput is the output for the squid_open tool.
type OpenChannelOutput struct {
	ID uint8 `json:"id" jsonschema:"description=Newly opened channel id, 1-15"`
}

// --- Close channel tool ---

// CloseChannelInput is the input for the squid_close tool.
type CloseChannelInput struct {
	ID int `json:"id" jsonschema:"required,description=Channel id to close, 1-15"`
}

// CloseChannelOutput is the output for the squid_close tool.
type CloseChannelOutput struct {
	Success bool `json:"success" jsonschema:"description=Whether the channel was closed"`
}

// --- Send tool ---

// SendInput is the input for the squid_send tool.
type SendInput struct {
	ID   int    `json:"id" jsonschema:"required,description=Channel id to send on, 1-15"`
	Data string `json:"data" jsonschema:"required,description=Bytes to enqueue, interpreted as UTF-8 text"`
}

// SendOutput is the output for the squid_send tool.
type SendOutput struct {
	Queued int `json:"queued" jsonschema:"description=Number of bytes enqueued for transmission"`
}

// --- Recv tool ---

// RecvInput is the input for the squid_recv tool.
type RecvInput struct {
	ID  int `json:"id" jsonschema:"required,description=Channel id to read from, 1-15"`
	Max int `json:"max,omitempty" jsonschema:"description=Maximum bytes to return (default 512)"`
}

// RecvOutput is the output for the squid_recv tool.
type RecvOutput struct {
	Data string `json:"data" jsonschema:"description=Bytes drained from the channel's RX queue, decoded as UTF-8 text"`
	N    int    `json:"n" jsonschema:"description=Number of bytes returned"`
}
