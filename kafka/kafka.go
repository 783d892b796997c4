// Package kafka builds a flow graph from the topic ACLs of a Kafka cluster:
// principals flow to the topics they may write, and topics flow to the
// principals allowed to read them.
package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"sort"
	"strings"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/graph"
)

type Options struct {
	Brokers  []string
	Version  string
	ClientID string
	Verbose  bool
	TLS      TLSOptions
}

// TLSOptions enables TLS when CAFile is set. CertFile and KeyFile add a
// client certificate.
type TLSOptions struct {
	CAFile   string
	CertFile string
	KeyFile  string
}

func (t TLSOptions) Enabled() bool {
	return t.CAFile != ""
}

// Lister is the part of sarama.ClusterAdmin the graph is built from.
type Lister interface {
	ListAcls(filter sarama.AclFilter) ([]sarama.ResourceAcls, error)
	ListTopics() (map[string]sarama.TopicDetail, error)
}

// NewAdminClient constructs a new admin client connected to the kafka cluster.
func NewAdminClient(opts Options, log *zap.SugaredLogger) (sarama.ClusterAdmin, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.WithHint(errors.New("no Kafka bootstrap brokers defined"), "set kafka.brokers or FLOWVIZ_KAFKA_BROKERS")
	}

	config := sarama.NewConfig()
	version, err := sarama.ParseKafkaVersion(opts.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "parse kafka version %q", opts.Version)
	}
	config.Version = version
	config.ClientID = opts.ClientID

	if opts.Verbose {
		sarama.Logger = zap.NewStdLog(log.Desugar().Named("sarama"))
	}

	if opts.TLS.Enabled() {
		tlsConfig, err := newTLSConfig(opts.TLS)
		if err != nil {
			return nil, err
		}
		config.Net.TLS.Enable = true
		config.Net.TLS.Config = tlsConfig
	}

	client, err := sarama.NewClusterAdmin(opts.Brokers, config)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to brokers %s", strings.Join(opts.Brokers, ","))
	}
	return client, nil
}

func newTLSConfig(opts TLSOptions) (*tls.Config, error) {
	config := &tls.Config{RootCAs: x509.NewCertPool()}
	ca, err := os.ReadFile(opts.CAFile)
	if err != nil {
		return nil, errors.Wrap(err, "read CA file")
	}
	if !config.RootCAs.AppendCertsFromPEM(ca) {
		return nil, errors.Newf("no certificates found in %s", opts.CAFile)
	}

	if opts.CertFile != "" || opts.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "load client certificate")
		}
		config.Certificates = []tls.Certificate{cert}
	}
	return config, nil
}

type userOps struct {
	To   map[string]struct{}
	From map[string]struct{}
}

// FetchGraph loads all topic ACLs and topics and builds the flow graph.
func FetchGraph(client Lister) (graph.Graph, error) {
	resourceAcls, err := client.ListAcls(sarama.AclFilter{
		ResourceType:   sarama.AclResourceTopic,
		PermissionType: sarama.AclPermissionAny,
		Operation:      sarama.AclOperationAny,
	})
	if err != nil {
		return graph.Graph{}, errors.Wrap(err, "list acls")
	}
	topics, err := client.ListTopics()
	if err != nil {
		return graph.Graph{}, errors.Wrap(err, "list topics")
	}

	names := make([]string, 0, len(topics))
	for topic := range topics {
		names = append(names, topic)
	}
	sort.Strings(names)
	return CreateGraph(names, parseResourceAcls(resourceAcls)), nil
}

func parseResourceAcls(acls []sarama.ResourceAcls) map[string]userOps {
	users := map[string]userOps{}
	for _, resAcl := range acls {
		for _, acl := range resAcl.Acls {
			userDn := strings.TrimPrefix(acl.Principal, "User:")
			if _, ok := users[userDn]; !ok {
				users[userDn] = userOps{To: map[string]struct{}{}, From: map[string]struct{}{}}
			}
			u := users[userDn]
			if acl.PermissionType != sarama.AclPermissionAllow {
				continue
			}
			switch acl.Operation {
			case sarama.AclOperationRead:
				u.From[resAcl.ResourceName] = struct{}{}
			case sarama.AclOperationWrite:
				u.To[resAcl.ResourceName] = struct{}{}
			case sarama.AclOperationAll, sarama.AclOperationAny:
				u.From[resAcl.ResourceName] = struct{}{}
				u.To[resAcl.ResourceName] = struct{}{}
			}
		}
	}
	return users
}

// Node types
const (
	TypeTopic    = "topic"
	TypeProducer = "producer"
	TypeConsumer = "consumer"
)

// ProducerNode and ConsumerNode name the two sides of a principal. The
// suffixes contain characters Kafka forbids in topic names, so they never
// collide with a topic node.
func ProducerNode(principal string) string { return principal + " (producer)" }
func ConsumerNode(principal string) string { return principal + " (consumer)" }

// CreateGraph builds producer -> topic -> consumer flows. A principal that
// both writes and reads appears as two nodes, so the graph is acyclic even
// when it reads a topic it writes. Topic nodes come first in the given
// order, then principals sorted by name. Grants on topics missing from
// topics add the topic as a node.
func CreateGraph(topics []string, users map[string]userOps) graph.Graph {
	g := graph.NewGraph()
	for _, topic := range topics {
		g.AddNode(&graph.Node{Name: topic, Type: TypeTopic, Edges: []*graph.Edge{}})
	}

	principals := make([]string, 0, len(users))
	for user := range users {
		principals = append(principals, user)
	}
	sort.Strings(principals)

	for _, user := range principals {
		ops := users[user]
		if len(ops.To) > 0 {
			g.AddNode(&graph.Node{Name: ProducerNode(user), Type: TypeProducer, Edges: []*graph.Edge{}})
		}
		if len(ops.From) > 0 {
			g.AddNode(&graph.Node{Name: ConsumerNode(user), Type: TypeConsumer, Edges: []*graph.Edge{}})
		}
	}

	topicNode := func(name string) *graph.Node {
		if n, ok := g.Nodes[name]; ok {
			return n
		}
		n := &graph.Node{Name: name, Type: TypeTopic, Edges: []*graph.Edge{}}
		g.AddNode(n)
		return n
	}

	for _, user := range principals {
		ops := users[user]
		for _, output := range sortedKeys(ops.To) {
			topicNode(output)
			g.Nodes[ProducerNode(user)].AddEdge(&graph.Edge{Target: output, Operation: "Write"})
		}
		for _, input := range sortedKeys(ops.From) {
			topicNode(input).AddEdge(&graph.Edge{Target: ConsumerNode(user), Operation: "Read"})
		}
	}
	return g
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
