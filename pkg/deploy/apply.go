package deploy

import (
	"context"
	"fmt"

	kubeapps "k8s.io/api/apps/v1"
	kubeautoscaling "k8s.io/api/autoscaling/v2"
	kubecore "k8s.io/api/core/v1"
	kubenetworking "k8s.io/api/networking/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"
)

// subset of k8s.Clientset, just enough to stand up the deployment.
type Client interface {
	CreateNamespace(ctx context.Context, ns *kubecore.Namespace) error
	CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) error
	CreateService(ctx context.Context, namespace string, svc *kubecore.Service) error
	CreateIngress(ctx context.Context, namespace string, ing *kubenetworking.Ingress) error
	CreateAutoscaler(ctx context.Context, namespace string, hpa *kubeautoscaling.HorizontalPodAutoscaler) error
}

type k8sClient struct {
	client *k8s.Clientset
}

var _ Client = &k8sClient{}

func WrapClientset(c *k8s.Clientset) Client {
	return &k8sClient{client: c}
}

func (k *k8sClient) CreateNamespace(ctx context.Context, ns *kubecore.Namespace) error {
	_, err := k.client.CoreV1().Namespaces().Create(ctx, ns, kubeapimeta.CreateOptions{})
	return err
}

func (k *k8sClient) CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) error {
	_, err := k.client.AppsV1().Deployments(namespace).Create(ctx, depl, kubeapimeta.CreateOptions{})
	return err
}

func (k *k8sClient) CreateService(ctx context.Context, namespace string, svc *kubecore.Service) error {
	_, err := k.client.CoreV1().Services(namespace).Create(ctx, svc, kubeapimeta.CreateOptions{})
	return err
}

func (k *k8sClient) CreateIngress(ctx context.Context, namespace string, ing *kubenetworking.Ingress) error {
	_, err := k.client.NetworkingV1().Ingresses(namespace).Create(ctx, ing, kubeapimeta.CreateOptions{})
	return err
}

func (k *k8sClient) CreateAutoscaler(ctx context.Context, namespace string, hpa *kubeautoscaling.HorizontalPodAutoscaler) error {
	_, err := k.client.AutoscalingV2().HorizontalPodAutoscalers(namespace).Create(ctx, hpa, kubeapimeta.CreateOptions{})
	return err
}

// Apply creates every resource of the deployment. Resources which
// already exist are left as they are, so a re-run over a live cluster
// fills in whatever is missing.
func Apply(ctx context.Context, c Client, s Spec) error {
	steps := []struct {
		kind   string
		create func() error
	}{
		{"namespace", func() error { return c.CreateNamespace(ctx, s.NamespaceResource()) }},
		{"deployment", func() error { return c.CreateDeployment(ctx, s.Namespace, s.Deployment()) }},
		{"service", func() error { return c.CreateService(ctx, s.Namespace, s.Service()) }},
		{"autoscaler", func() error { return c.CreateAutoscaler(ctx, s.Namespace, s.Autoscaler()) }},
	}
	if ing := s.Ingress(); ing != nil {
		steps = append(steps, struct {
			kind   string
			create func() error
		}{"ingress", func() error { return c.CreateIngress(ctx, s.Namespace, ing) }})
	}

	for _, step := range steps {
		if err := step.create(); err != nil {
			if kubeerr.IsAlreadyExists(err) {
				continue
			}
			return fmt.Errorf("can not create %s: %w", step.kind, err)
		}
	}
	return nil
}
