package mocks

import (
	"context"

	kubeapps "k8s.io/api/apps/v1"
	kubeautoscaling "k8s.io/api/autoscaling/v2"
	kubecore "k8s.io/api/core/v1"
	kubenetworking "k8s.io/api/networking/v1"

	"github.com/dpetrashka/kanaweb/pkg/deploy"
)

type Client struct {
	Impl struct {
		CreateNamespace  func(ctx context.Context, ns *kubecore.Namespace) error
		CreateDeployment func(ctx context.Context, namespace string, depl *kubeapps.Deployment) error
		CreateService    func(ctx context.Context, namespace string, svc *kubecore.Service) error
		CreateIngress    func(ctx context.Context, namespace string, ing *kubenetworking.Ingress) error
		CreateAutoscaler func(ctx context.Context, namespace string, hpa *kubeautoscaling.HorizontalPodAutoscaler) error
	}
	Calls struct {
		CreateNamespace  []*kubecore.Namespace
		CreateDeployment []*kubeapps.Deployment
		CreateService    []*kubecore.Service
		CreateIngress    []*kubenetworking.Ingress
		CreateAutoscaler []*kubeautoscaling.HorizontalPodAutoscaler
	}
}

var _ deploy.Client = &Client{}

func NewClient() *Client {
	return &Client{}
}

func (m *Client) CreateNamespace(ctx context.Context, ns *kubecore.Namespace) error {
	m.Calls.CreateNamespace = append(m.Calls.CreateNamespace, ns)
	if m.Impl.CreateNamespace == nil {
		panic("CreateNamespace: it should not be called")
	}
	return m.Impl.CreateNamespace(ctx, ns)
}

func (m *Client) CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) error {
	m.Calls.CreateDeployment = append(m.Calls.CreateDeployment, depl)
	if m.Impl.CreateDeployment == nil {
		panic("CreateDeployment: it should not be called")
	}
	return m.Impl.CreateDeployment(ctx, namespace, depl)
}

func (m *Client) CreateService(ctx context.Context, namespace string, svc *kubecore.Service) error {
	m.Calls.CreateService = append(m.Calls.CreateService, svc)
	if m.Impl.CreateService == nil {
		panic("CreateService: it should not be called")
	}
	return m.Impl.CreateService(ctx, namespace, svc)
}

func (m *Client) CreateIngress(ctx context.Context, namespace string, ing *kubenetworking.Ingress) error {
	m.Calls.CreateIngress = append(m.Calls.CreateIngress, ing)
	if m.Impl.CreateIngress == nil {
		panic("CreateIngress: it should not be called")
	}
	return m.Impl.CreateIngress(ctx, namespace, ing)
}

func (m *Client) CreateAutoscaler(ctx context.Context, namespace string, hpa *kubeautoscaling.HorizontalPodAutoscaler) error {
	m.Calls.CreateAutoscaler = append(m.Calls.CreateAutoscaler, hpa)
	if m.Impl.CreateAutoscaler == nil {
		panic("CreateAutoscaler: it should not be called")
	}
	return m.Impl.CreateAutoscaler(ctx, namespace, hpa)
}
