package metadata

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

const DefaultIndexAddress string = "https://api.nuget.org/v3/index.json"
const DefaultPackageName string = "microsoft.windows.sdk.win32metadata"

var ErrNoMetadataInPackage = errors.New("package does not contain a .winmd file")

// Fetches the newest Windows metadata package from a NuGet feed.
type Downloader struct {
	Client       *http.Client
	IndexAddress string
	PackageName  string
}

func NewDownloader() *Downloader {
	return &Downloader{
		Client:       http.DefaultClient,
		IndexAddress: DefaultIndexAddress,
		PackageName:  DefaultPackageName,
	}
}

// Downloads the newest package and writes its metadata file to given path.
// Returns the version that was written.
func (downloader *Downloader) Download(ctx context.Context, metadataFileName string) (string, error) {
	baseAddress, err := downloader.baseAddress(ctx)
	if err != nil {
		return "", err
	}

	versionsResponse, err := downloader.queryGet(ctx, fmt.Sprintf("%s%s/index.json", baseAddress, downloader.PackageName))
	if err != nil {
		return "", err
	}
	versions, err := parse[map[string][]string](versionsResponse)
	if err != nil {
		return "", fmt.Errorf("could not parse package versions: %w", err)
	}
	if len(versions["versions"]) == 0 {
		return "", fmt.Errorf("no versions of %s were published", downloader.PackageName)
	}

	orderedVersions := make([]*version.Version, len(versions["versions"]))
	for i, versionString := range versions["versions"] {
		parsedVersion, err := version.NewVersion(versionString)
		if err != nil {
			return "", fmt.Errorf("error parsing version '%s': %w", versionString, err)
		}

		orderedVersions[i] = parsedVersion
	}

	sort.Sort(version.Collection(orderedVersions))
	newest := orderedVersions[len(orderedVersions)-1].Original()
	nugetBytes, err := downloader.queryGet(ctx, fmt.Sprintf("%s%s/%s/%s.%s.nupkg", baseAddress, downloader.PackageName, newest, downloader.PackageName, newest))
	if err != nil {
		return "", err
	}

	if err := extractMetadata(nugetBytes, metadataFileName); err != nil {
		return "", err
	}
	return newest, nil
}

func extractMetadata(nugetBytes []byte, metadataFileName string) error {
	bytesReader := bytes.NewReader(nugetBytes)
	nuget, err := zip.NewReader(bytesReader, int64(bytesReader.Len()))
	if err != nil {
		return fmt.Errorf("could not open package: %w", err)
	}

	for _, file := range nuget.File {
		if filepath.Ext(file.Name) != ".winmd" {
			continue
		}

		reader, err := file.Open()
		if err != nil {
			return fmt.Errorf("could not open '%s': %w", file.Name, err)
		}
		defer reader.Close()

		metadataBytes, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("could not read '%s': %w", file.Name, err)
		}
		return os.WriteFile(metadataFileName, metadataBytes, 0644)
	}

	return ErrNoMetadataInPackage
}

func (downloader *Downloader) baseAddress(ctx context.Context) (string, error) {
	response, err := downloader.queryGet(ctx, downloader.IndexAddress)
	if err != nil {
		return "", err
	}
	index, err := parse[nugetIndex](response)
	if err != nil {
		return "", fmt.Errorf("could not parse service index: %w", err)
	}

	for _, resource := range index.Resources {
		if strings.Contains(resource.Type, "PackageBaseAddress") {
			return resource.Id, nil
		}
	}

	return "", fmt.Errorf("service index %s has no PackageBaseAddress resource", downloader.IndexAddress)
}

func parse[T interface{}](source []byte) (T, error) {
	var parsedBody T
	err := json.Unmarshal(source, &parsedBody)
	return parsedBody, err
}

func (downloader *Downloader) queryGet(ctx context.Context, url string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	response, err := downloader.Client.Do(request)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, response.Status)
	}

	return io.ReadAll(response.Body)
}

type nugetIndex struct {
	Resources []nugetResource `json:"resources"`
}

type nugetResource struct {
	Id   string `json:"@id"`
	Type string `json:"@type"`
}
