// Package docker wraps the Docker Engine SDK for managing the kalibox
// toolbox container.
//
// It provides socket auto-detection, label-based discovery of the
// managed container, and the container lifecycle: pulling the image,
// creating the container with the host filesystem and X11 socket
// mounted, starting and stopping it, and running package installs
// inside it via the exec API.
package docker
