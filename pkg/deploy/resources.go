package deploy

import (
	"strings"

	kubeapps "k8s.io/api/apps/v1"
	kubeautoscaling "k8s.io/api/autoscaling/v2"
	kubecore "k8s.io/api/core/v1"
	kubenetworking "k8s.io/api/networking/v1"
	kubeapiresource "k8s.io/apimachinery/pkg/api/resource"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/dpetrashka/kanaweb/pkg/utils/pointer"
)

const (
	appName = "kanad"

	// AppPort is where kanad serves the UI and API.
	AppPort int32 = 8501

	// ModelPort is where the manga-ocr sidecar listens, pod-local only.
	ModelPort int32 = 8502

	modelCacheDir = "/models"
)

// labels returns the recommended k8s labels identifying one component
// of the deployment.
//
// https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
func labels(component string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":       appName,
		"app.kubernetes.io/instance":   appName,
		"app.kubernetes.io/component":  component,
		"app.kubernetes.io/part-of":    "kanaweb",
		"app.kubernetes.io/managed-by": "kanadeploy",
	}
}

func selector() map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":     appName,
		"app.kubernetes.io/instance": appName,
	}
}

func objectMeta(s Spec, component string) kubeapimeta.ObjectMeta {
	return kubeapimeta.ObjectMeta{
		Name:      appName,
		Namespace: s.Namespace,
		Labels:    labels(component),
	}
}

func (s Spec) NamespaceResource() *kubecore.Namespace {
	return &kubecore.Namespace{
		TypeMeta: kubeapimeta.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:   s.Namespace,
			Labels: labels("namespace"),
		},
	}
}

// Deployment runs kanad next to its model server in each pod. Requests
// mirror the original task sizing, 2 cpu and 4Gi for the pair.
func (s Spec) Deployment() *kubeapps.Deployment {
	return &kubeapps.Deployment{
		TypeMeta:   kubeapimeta.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: objectMeta(s, "app"),
		Spec: kubeapps.DeploymentSpec{
			Replicas: pointer.Ref(s.MinReplicas),
			Selector: &kubeapimeta.LabelSelector{MatchLabels: selector()},
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{Labels: labels("app")},
				Spec: kubecore.PodSpec{
					Containers: []kubecore.Container{
						{
							Name:  appName,
							Image: s.AppImage,
							Args:  []string{"--config-path", "/etc/kanad/config.yaml"},
							Ports: []kubecore.ContainerPort{
								{Name: "http", ContainerPort: AppPort},
							},
							Resources: kubecore.ResourceRequirements{
								Requests: kubecore.ResourceList{
									kubecore.ResourceCPU:    kubeapiresource.MustParse("500m"),
									kubecore.ResourceMemory: kubeapiresource.MustParse("512Mi"),
								},
							},
							ReadinessProbe: &kubecore.Probe{
								ProbeHandler: kubecore.ProbeHandler{
									HTTPGet: &kubecore.HTTPGetAction{
										Path: "/api/health",
										Port: intstr.FromInt32(AppPort),
									},
								},
							},
						},
						{
							Name:  "model",
							Image: s.ModelImage,
							Ports: []kubecore.ContainerPort{
								{Name: "model", ContainerPort: ModelPort},
							},
							Env: []kubecore.EnvVar{
								// the sidecar caches fetched weights here,
								// so a pod restart skips the download.
								{Name: "HF_HOME", Value: modelCacheDir},
							},
							VolumeMounts: []kubecore.VolumeMount{
								{Name: "model-cache", MountPath: modelCacheDir},
							},
							Resources: kubecore.ResourceRequirements{
								Requests: kubecore.ResourceList{
									kubecore.ResourceCPU:    kubeapiresource.MustParse("1500m"),
									kubecore.ResourceMemory: kubeapiresource.MustParse("3584Mi"),
								},
							},
						},
					},
					Volumes: []kubecore.Volume{
						{
							Name: "model-cache",
							VolumeSource: kubecore.VolumeSource{
								EmptyDir: &kubecore.EmptyDirVolumeSource{
									SizeLimit: pointer.Ref(
										kubeapiresource.MustParse(s.ModelCacheSize),
									),
								},
							},
						},
					},
				},
			},
		},
	}
}

func (s Spec) Service() *kubecore.Service {
	return &kubecore.Service{
		TypeMeta:   kubeapimeta.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: objectMeta(s, "service"),
		Spec: kubecore.ServiceSpec{
			Selector: selector(),
			Ports: []kubecore.ServicePort{
				{
					Name:       "http",
					Port:       80,
					TargetPort: intstr.FromInt32(AppPort),
				},
			},
		},
	}
}

// Ingress exposes the service on s.Host. Returns nil when no host is
// configured.
func (s Spec) Ingress() *kubenetworking.Ingress {
	if s.Host == "" {
		return nil
	}

	annotations := map[string]string{
		"external-dns.alpha.kubernetes.io/hostname": s.Host,
	}
	if 0 < len(s.AllowFrom) {
		annotations["nginx.ingress.kubernetes.io/whitelist-source-range"] = strings.Join(s.AllowFrom, ",")
	}

	ing := &kubenetworking.Ingress{
		TypeMeta: kubeapimeta.TypeMeta{
			APIVersion: "networking.k8s.io/v1", Kind: "Ingress",
		},
		ObjectMeta: objectMeta(s, "ingress"),
		Spec: kubenetworking.IngressSpec{
			Rules: []kubenetworking.IngressRule{
				{
					Host: s.Host,
					IngressRuleValue: kubenetworking.IngressRuleValue{
						HTTP: &kubenetworking.HTTPIngressRuleValue{
							Paths: []kubenetworking.HTTPIngressPath{
								{
									Path:     "/",
									PathType: pointer.Ref(kubenetworking.PathTypePrefix),
									Backend: kubenetworking.IngressBackend{
										Service: &kubenetworking.IngressServiceBackend{
											Name: appName,
											Port: kubenetworking.ServiceBackendPort{Name: "http"},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	ing.ObjectMeta.Annotations = annotations

	if s.TLSSecret != "" {
		ing.Spec.TLS = []kubenetworking.IngressTLS{
			{Hosts: []string{s.Host}, SecretName: s.TLSSecret},
		}
	}
	return ing
}

func (s Spec) Autoscaler() *kubeautoscaling.HorizontalPodAutoscaler {
	return &kubeautoscaling.HorizontalPodAutoscaler{
		TypeMeta: kubeapimeta.TypeMeta{
			APIVersion: "autoscaling/v2", Kind: "HorizontalPodAutoscaler",
		},
		ObjectMeta: objectMeta(s, "autoscaler"),
		Spec: kubeautoscaling.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: kubeautoscaling.CrossVersionObjectReference{
				APIVersion: "apps/v1", Kind: "Deployment", Name: appName,
			},
			MinReplicas: pointer.Ref(s.MinReplicas),
			MaxReplicas: s.MaxReplicas,
			Metrics: []kubeautoscaling.MetricSpec{
				{
					Type: kubeautoscaling.ResourceMetricSourceType,
					Resource: &kubeautoscaling.ResourceMetricSource{
						Name: kubecore.ResourceCPU,
						Target: kubeautoscaling.MetricTarget{
							Type:               kubeautoscaling.UtilizationMetricType,
							AverageUtilization: pointer.Ref(s.TargetCPUPercent),
						},
					},
				},
			},
		},
	}
}
