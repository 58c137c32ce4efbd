package producer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/atrniv/gregor/protocol"
)

type topicPartition struct {
	topic     string
	partition int32
}

// correlationEntry ties an outstanding request's correlation id to the
// send-buffer snapshot it carries, so the decoded response can be routed
// back to the right per-message callbacks. Created at dispatch, destroyed
// on response or terminal failure.
type correlationEntry struct {
	id       int32
	tp       topicPartition
	messages []*Message
}

// Producer is an asynchronous batching producer for one logical cluster.
// Callers enqueue messages from any goroutine; a single scheduler goroutine
// drains the ring buffer, batches per partition, dispatches produce
// requests and reconciles responses. Send buffers are touched only by the
// scheduler, which is what lets them go without locks.
//
// Ordering within one partition is preserved from enqueue to offset
// assignment as long as no retry occurs. A retried batch goes out as a new
// request and may land after messages enqueued later; that weaker ordering
// under retry is accepted, not a defect.
type Producer struct {
	config   Config
	features protocol.ProduceFeatures
	metadata Metadata

	ring    *RingBuffer
	buffers map[topicPartition]*SendBuffer
	order   []topicPartition

	correlation protocol.Correlation
	rrCounter   int32

	pendingMu sync.Mutex
	pending   map[int32]correlationEntry

	wake      chan struct{}
	retryWake chan struct{}
	done      chan struct{}
	finished  sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewProducer validates the configuration, resolves the version feature
// set once, and starts the flush scheduler.
func NewProducer(config Config, metadata Metadata) (*Producer, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	features, err := protocol.FeaturesForVersion(config.APIVersion)
	if err != nil {
		return nil, err
	}

	p := &Producer{
		config:    config,
		features:  features,
		metadata:  metadata,
		ring:      NewRingBuffer(config.MaxBuffering, config.WaitOnBufferFull, config.BufferWaitTimeout),
		buffers:   map[topicPartition]*SendBuffer{},
		pending:   map[int32]correlationEntry{},
		wake:      make(chan struct{}, 1),
		retryWake: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	p.finished.Add(1)
	go p.run()

	log.Debug().
		Str("client_id", config.ClientID).
		Int16("api_version", config.APIVersion).
		Msg("Producer started")
	return p, nil
}

// Enqueue buffers one message for asynchronous delivery. The callback
// receives the terminal outcome on the scheduler goroutine. On a full ring
// buffer the call blocks or fails according to the configured policy.
func (p *Producer) Enqueue(topic string, key []byte, value []byte, callback Callback) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrProducerClosed
	}

	msg := &Message{
		Topic:       topic,
		Key:         key,
		Value:       value,
		EnqueueTime: time.Now(),
		callback:    callback,
	}
	if err := p.ring.Enqueue(msg); err != nil {
		return err
	}

	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Send delivers one message synchronously, bypassing the ring buffer and
// send buffers, and returns the assigned partition and offset. Retries are
// performed inline up to MaxRetry.
func (p *Producer) Send(topic string, key []byte, value []byte) (int32, int64, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return -1, -1, ErrProducerClosed
	}

	count, err := p.partitionCount(topic)
	if err != nil {
		return -1, -1, err
	}
	partition := p.config.Partitioner(key, count, atomic.AddInt32(&p.rrCounter, 1))
	if partition < 0 || partition >= count {
		return -1, -1, protocol.NewProtocolException("invalid_partition", "Partitioner chose partition %d outside [0, %d)", partition, count)
	}

	msg := &Message{
		Topic:       topic,
		Key:         key,
		Value:       value,
		EnqueueTime: time.Now(),
	}
	tp := topicPartition{topic: topic, partition: partition}

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetry; attempt++ {
		if attempt > 0 {
			_ = p.metadata.Refresh()
			time.Sleep(p.config.RetryBackoff)
		}
		results, err := p.produce(tp, []*Message{msg})
		if err == nil {
			return partition, results[0].Offset, results[0].Err
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}
	return partition, -1, lastErr
}

// InFlight reports how many produce requests are awaiting a response.
func (p *Producer) InFlight() int {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	return len(p.pending)
}

// Close flushes everything still buffered, stops the scheduler and releases
// the send buffers. Messages that cannot be flushed, including retries
// still pending, are failed with ErrProducerClosed. Enqueue must not be
// called concurrently with Close.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProducerClosed
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.finished.Wait()

	for _, tp := range p.order {
		p.buffers[tp].Release()
	}
	log.Debug().Str("client_id", p.config.ClientID).Msg("Producer closed")
	return nil
}

// run is the flush scheduler: park in Idle until the periodic tick, an
// enqueue wake or a retry wake, then drain and dispatch. A tick or retry
// pass flushes every non-empty buffer so staleness stays bounded by
// FlushTime; an enqueue wake flushes only buffers past a threshold.
func (p *Producer) run() {
	defer p.finished.Done()

	ticker := time.NewTicker(p.config.FlushTime)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			p.cycle(true)
			p.failRemaining()
			return
		case <-ticker.C:
			p.cycle(true)
		case <-p.retryWake:
			p.cycle(true)
		case <-p.wake:
			p.cycle(false)
		}
	}
}

func (p *Producer) cycle(flushAll bool) {
	p.drainRing()
	p.dispatch(flushAll)
}

// drainRing claims every queued message, routes it through the partitioner
// and hands ownership to the matching send buffer.
func (p *Producer) drainRing() {
	for _, msg := range p.ring.DrainUpTo(p.ring.Cap()) {
		count, err := p.partitionCount(msg.Topic)
		if err != nil {
			msg.deliver(Result{Partition: -1, Offset: -1, Err: err})
			continue
		}
		partition := p.config.Partitioner(msg.Key, count, atomic.AddInt32(&p.rrCounter, 1))
		if partition < 0 || partition >= count {
			msg.deliver(Result{Partition: partition, Offset: -1, Err: protocol.NewProtocolException("invalid_partition", "Partitioner chose partition %d outside [0, %d)", partition, count)})
			continue
		}

		tp := topicPartition{topic: msg.Topic, partition: partition}
		buf, ok := p.buffers[tp]
		if !ok {
			buf = NewSendBuffer(tp.topic, tp.partition)
			p.buffers[tp] = buf
			p.order = append(p.order, tp)
		}
		buf.Append(msg, msg.encodedSize(p.features.MessageMagic))
	}
}

func (p *Producer) dispatch(flushAll bool) {
	for _, tp := range p.order {
		buf := p.buffers[tp]
		if buf.Len() == 0 {
			continue
		}
		if flushAll || buf.ShouldFlush(p.config.BatchNum, p.config.BatchSize) {
			p.flush(tp, buf)
		}
	}
}

func (p *Producer) flush(tp topicPartition, buf *SendBuffer) {
	messages := buf.SnapshotAndClear()
	results, err := p.produce(tp, messages)
	if err != nil {
		p.retryOrFail(tp, messages, err)
		return
	}
	for index, msg := range messages {
		msg.deliver(results[index])
	}
}

func (p *Producer) partitionCount(topic string) (int32, error) {
	count, err := p.metadata.PartitionCount(topic)
	if err != nil {
		if rerr := p.metadata.Refresh(); rerr != nil {
			return 0, NetworkError{Err: rerr}
		}
		count, err = p.metadata.PartitionCount(topic)
		if err != nil {
			return 0, err
		}
	}
	if count <= 0 {
		return 0, ErrUnknownTopicOrPartition
	}
	return count, nil
}

func (p *Producer) leaderFor(tp topicPartition) (Broker, error) {
	leader, err := p.metadata.LeaderFor(tp.topic, tp.partition)
	if err != nil {
		if rerr := p.metadata.Refresh(); rerr != nil {
			return nil, NetworkError{Err: rerr}
		}
		leader, err = p.metadata.LeaderFor(tp.topic, tp.partition)
		if err != nil {
			return nil, NetworkError{Err: err}
		}
	}
	return leader, nil
}

// produce encodes one batch, exchanges it with the partition leader and
// reconciles the response into per-message results. A returned error is
// batch-level: nothing was resolved and the caller decides between retry
// and terminal failure.
func (p *Producer) produce(tp topicPartition, messages []*Message) ([]Result, error) {
	entries := make([]protocol.RecordEntry, len(messages))
	for index, msg := range messages {
		entries[index] = protocol.RecordEntry{
			Timestamp: msg.EnqueueTime.UnixNano() / int64(time.Millisecond),
			Key:       msg.Key,
			Value:     msg.Value,
		}
	}
	set, err := protocol.NewMessageSet(entries, p.features.MessageMagic, p.config.Compression, p.config.CompressionLevel)
	if err != nil {
		return nil, err
	}

	transactionalID := protocol.NullString()
	if p.config.TransactionalID != "" {
		transactionalID = protocol.NewNullableString(p.config.TransactionalID)
	}
	req := protocol.ProduceRequest{
		TransactionalID: transactionalID,
		Acks:            p.config.RequiredAcks,
		TimeoutMs:       int32(p.config.RequestTimeout / time.Millisecond),
		Topics: []protocol.TopicProduceData{
			{
				Name: tp.topic,
				Partitions: []protocol.PartitionProduceData{
					{PartitionIndex: tp.partition, Records: set},
				},
			},
		},
	}

	correlationID := p.correlation.Next()
	header := protocol.RequestHeader{
		APIKey:        protocol.APIKeyProduce,
		APIVersion:    p.features.Version,
		CorrelationID: correlationID,
		ClientID:      protocol.NewNullableString(p.config.ClientID),
	}

	w := protocol.NewWriter()
	if err := req.Write(p.features, header, w); err != nil {
		return nil, err
	}
	data, err := w.Data()
	if err != nil {
		return nil, err
	}

	leader, err := p.leaderFor(tp)
	if err != nil {
		return nil, err
	}

	entry := correlationEntry{id: correlationID, tp: tp, messages: messages}
	p.pendingMu.Lock()
	p.pending[correlationID] = entry
	p.pendingMu.Unlock()
	defer func() {
		p.pendingMu.Lock()
		delete(p.pending, correlationID)
		p.pendingMu.Unlock()
	}()

	log.Debug().
		Str("client_id", p.config.ClientID).
		Str("topic", tp.topic).
		Int32("partition", tp.partition).
		Int32("correlation_id", correlationID).
		Int("messages", len(messages)).
		Msg("REQ SENT")

	response, err := leader.SendReceive(data, p.config.RequestTimeout)
	if err != nil {
		return nil, NetworkError{Err: err}
	}
	return p.reconcile(entry, response)
}

func (p *Producer) reconcile(entry correlationEntry, response []byte) ([]Result, error) {
	r := protocol.NewReader(response)
	header := protocol.ReadResponseHeader(r)
	if header.CorrelationID != entry.id {
		return nil, protocol.NewProtocolException("correlation_mismatch", "Expected correlation id %d but received %d", entry.id, header.CorrelationID)
	}
	res, err := protocol.ReadProduceResponse(p.features, r)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("client_id", p.config.ClientID).
		Int32("correlation_id", header.CorrelationID).
		Int32("throttle_time_ms", res.ThrottleTimeMs).
		Msg("RES RCV")

	for _, topicRes := range res.Responses {
		if topicRes.Name != entry.tp.topic {
			continue
		}
		for _, partitionRes := range topicRes.Partitions {
			if partitionRes.PartitionIndex != entry.tp.partition {
				continue
			}
			return p.resolve(entry, partitionRes)
		}
	}
	return nil, protocol.NewProtocolException("partition_missing", "Response is missing topic %s partition %d", entry.tp.topic, entry.tp.partition)
}

// resolve maps one partition response onto per-message outcomes. A v8
// response can fail individual records while the partition as a whole
// succeeds; those records get their specific error and the rest keep their
// offsets.
func (p *Producer) resolve(entry correlationEntry, res protocol.PartitionProduceResponse) ([]Result, error) {
	if err := ExceptionForCode(res.ErrorCode); err != nil {
		return nil, err
	}

	recordErrors := map[int32]string{}
	for _, re := range res.RecordErrors {
		recordErrors[re.BatchIndex] = re.BatchIndexErrorMessage
	}

	results := make([]Result, len(entry.messages))
	for index := range entry.messages {
		if message, failed := recordErrors[int32(index)]; failed {
			results[index] = Result{
				Partition: entry.tp.partition,
				Offset:    -1,
				Err:       RecordError{BatchIndex: int32(index), Message: message},
			}
			continue
		}
		results[index] = Result{
			Partition: entry.tp.partition,
			Offset:    res.BaseOffset + int64(index),
		}
	}
	return results, nil
}

// retryOrFail re-enqueues a failed batch for another flush pass when the
// error allows it, delivering terminal failures once a message runs out of
// retries. Leaders are re-resolved through a metadata refresh before the
// retry pass, since a failed leader is the dominant retry cause.
func (p *Producer) retryOrFail(tp topicPartition, messages []*Message, err error) {
	if !IsRetryable(err) {
		for _, msg := range messages {
			msg.deliver(Result{Partition: tp.partition, Offset: -1, Err: err})
		}
		return
	}

	log.Warn().
		Str("client_id", p.config.ClientID).
		Str("topic", tp.topic).
		Int32("partition", tp.partition).
		Int("messages", len(messages)).
		Err(err).
		Msg("Batch failed, retrying")
	_ = p.metadata.Refresh()

	requeued := false
	for _, msg := range messages {
		if msg.retries >= p.config.MaxRetry {
			msg.deliver(Result{Partition: tp.partition, Offset: -1, Err: err})
			continue
		}
		msg.retries++
		if rqErr := p.ring.Requeue(msg); rqErr != nil {
			msg.deliver(Result{Partition: tp.partition, Offset: -1, Err: rqErr})
			continue
		}
		requeued = true
	}
	if requeued {
		backoff := p.config.RetryBackoff
		time.AfterFunc(backoff, func() {
			select {
			case p.retryWake <- struct{}{}:
			default:
			}
		})
	}
}

// failRemaining fails whatever is still queued once the final flush pass
// has run, which can only be retries that did not get another chance.
func (p *Producer) failRemaining() {
	for _, msg := range p.ring.DrainUpTo(p.ring.Cap()) {
		msg.deliver(Result{Partition: -1, Offset: -1, Err: ErrProducerClosed})
	}
}
