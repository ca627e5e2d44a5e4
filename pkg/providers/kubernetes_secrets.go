package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const serviceAccountNamespace = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

type KubernetesSecretsClient interface {
	GetSecret(ctx context.Context, namespace string, name string) (map[string][]byte, error)
}

type KubernetesClient struct {
	Client kubernetes.Interface
}

func (c *KubernetesClient) GetSecret(ctx context.Context, namespace string, name string) (map[string][]byte, error) {
	secret, err := c.Client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, err
	}
	return secret.Data, nil
}

// Keys of kubernetes secrets, addressed as [namespace/]secret/key. The pod
// namespace is used when none is given.
type KubernetesSecretsProvider struct {
	Client    KubernetesSecretsClient
	Namespace string
}

func NewKubernetesProvider() *KubernetesSecretsProvider {
	return &KubernetesSecretsProvider{}
}

type secretRef struct {
	namespace string
	name      string
}

type secretKey struct {
	credential string
	key        string
}

func (p *KubernetesSecretsProvider) Read(ctx context.Context, ids map[string]string) (map[string]string, error) {
	if err := p.configure(); err != nil {
		return nil, err
	}

	secrets := map[secretRef][]secretKey{}
	for name, id := range ids {
		ref, key, err := p.parseID(id)
		if err != nil {
			return nil, err
		}
		secrets[ref] = append(secrets[ref], secretKey{credential: name, key: key})
	}

	result := map[string]string{}
	for ref, keys := range secrets {
		logger := log.With().Str("namespace", ref.namespace).Str("secret", ref.name).Logger()

		data, err := p.Client.GetSecret(ctx, ref.namespace, ref.name)
		if err != nil {
			logger.Warn().Err(err).Msg("could not get kubernetes secret")
			continue
		}
		logger.Debug().Msg("read kubernetes secret")

		for _, k := range keys {
			value, ok := data[k.key]
			if !ok {
				logger.Warn().Str("key", k.key).Str("credential", k.credential).Msg("key not found in kubernetes secret")
				continue
			}
			result[k.credential] = string(value)
		}
	}

	return result, nil
}

func (p *KubernetesSecretsProvider) parseID(id string) (secretRef, string, error) {
	parts := strings.Split(id, "/")
	switch len(parts) {
	case 3:
		return secretRef{namespace: parts[0], name: parts[1]}, parts[2], nil
	case 2:
		return secretRef{namespace: p.Namespace, name: parts[0]}, parts[1], nil
	}
	return secretRef{}, "", fmt.Errorf("invalid kubernetes secret id: %s", id)
}

func (p *KubernetesSecretsProvider) configure() error {
	if p.Client != nil {
		return nil
	}

	config, err := rest.InClusterConfig()
	if err != nil {
		return err
	}
	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return err
	}
	p.Client = &KubernetesClient{Client: client}

	p.Namespace = os.Getenv("KUBERNETES_POD_NAMESPACE")
	if p.Namespace == "" {
		if ns, err := os.ReadFile(serviceAccountNamespace); err == nil {
			p.Namespace = strings.TrimSpace(string(ns))
		} else {
			log.Debug().Msg("failed to obtain current kubernetes namespace, using default")
			p.Namespace = "default"
		}
	}

	return nil
}
