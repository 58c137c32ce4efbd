package protocol

// Client side of the metadata RPC, used to resolve partition counts and
// leaders. Version gates mirror the produce side's era: nothing flexible
// (v9+) is emitted.

type MetadataRequest struct {
	Topics            []string
	AllTopicsMetadata bool

	AllowTopicAutoCreation             bool
	IncludeClusterAuthorizedOperations bool
	IncludeTopicAuthorizedOperations   bool
}

func (r MetadataRequest) Write(apiVersion int16, header RequestHeader, w *Writer) error {
	header.Write(w)

	if r.AllTopicsMetadata {
		// v0 asks for everything with an empty array, later versions with a
		// null one
		if apiVersion == 0 {
			w.Int32(0)
		} else {
			w.Int32(-1)
		}
	} else {
		w.Int32(int32(len(r.Topics)))
		for _, topic := range r.Topics {
			w.String(topic)
		}
	}

	if apiVersion >= 4 {
		w.Boolean(r.AllowTopicAutoCreation)
	}
	if apiVersion >= 8 {
		w.Boolean(r.IncludeClusterAuthorizedOperations)
		w.Boolean(r.IncludeTopicAuthorizedOperations)
	}

	_, err := w.Data()
	return err
}

type MetadataResponse struct {
	Brokers                     []BrokerMetadata
	Topics                      []TopicMetadata
	ControllerID                int32
	ClusterID                   NullableString
	ThrottleTimeMs              int32
	ClusterAuthorizedOperations int32
}

type BrokerMetadata struct {
	NodeID int32
	Host   string
	Port   int32
	Rack   NullableString
}

type TopicMetadata struct {
	ErrorCode                 int16
	Name                      string
	IsInternal                bool
	Partitions                []PartitionMetadata
	TopicAuthorizedOperations int32
}

type PartitionMetadata struct {
	ErrorCode           int16
	PartitionIndex      int32
	LeaderID            int32
	LeaderEpoch         int32
	ReplicaNodes        []int32
	ISRNodes            []int32
	OfflineReplicaNodes []int32
}

func ReadMetadataResponse(apiVersion int16, r *Reader) (MetadataResponse, error) {
	res := MetadataResponse{ThrottleTimeMs: -1}

	if apiVersion >= 3 {
		res.ThrottleTimeMs = r.Int32()
	}

	res.Brokers = make([]BrokerMetadata, r.ArrayLength())
	for index := range res.Brokers {
		res.Brokers[index] = readBrokerMetadata(apiVersion, r)
	}

	if apiVersion >= 2 {
		res.ClusterID = r.NullableString()
	}
	if apiVersion >= 1 {
		res.ControllerID = r.Int32()
	}

	res.Topics = make([]TopicMetadata, r.ArrayLength())
	for index := range res.Topics {
		res.Topics[index] = readTopicMetadata(apiVersion, r)
	}

	if apiVersion >= 8 {
		res.ClusterAuthorizedOperations = r.Int32()
	}

	if err := r.Error(); err != nil {
		return res, err
	}
	return res, nil
}

func readBrokerMetadata(apiVersion int16, r *Reader) BrokerMetadata {
	broker := BrokerMetadata{}
	broker.NodeID = r.Int32()
	broker.Host = r.String()
	broker.Port = r.Int32()
	if apiVersion >= 1 {
		broker.Rack = r.NullableString()
	}
	return broker
}

func readTopicMetadata(apiVersion int16, r *Reader) TopicMetadata {
	topic := TopicMetadata{}
	topic.ErrorCode = r.Int16()
	topic.Name = r.String()
	if apiVersion >= 1 {
		topic.IsInternal = r.Boolean()
	}
	topic.Partitions = make([]PartitionMetadata, r.ArrayLength())
	for index := range topic.Partitions {
		topic.Partitions[index] = readPartitionMetadata(apiVersion, r)
	}
	if apiVersion >= 8 {
		topic.TopicAuthorizedOperations = r.Int32()
	}
	return topic
}

func readPartitionMetadata(apiVersion int16, r *Reader) PartitionMetadata {
	partition := PartitionMetadata{}
	partition.ErrorCode = r.Int16()
	partition.PartitionIndex = r.Int32()
	partition.LeaderID = r.Int32()
	if apiVersion >= 7 {
		partition.LeaderEpoch = r.Int32()
	}
	partition.ReplicaNodes = readInt32Array(r)
	partition.ISRNodes = readInt32Array(r)
	if apiVersion >= 5 {
		partition.OfflineReplicaNodes = readInt32Array(r)
	}
	return partition
}

func readInt32Array(r *Reader) []int32 {
	values := make([]int32, r.ArrayLength())
	for index := range values {
		values[index] = r.Int32()
	}
	return values
}
