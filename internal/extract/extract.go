package extract

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/telefetch/telefetch/internal/config"
	"github.com/telefetch/telefetch/internal/queue"
)

// Result describes the artifact a finished extraction left on disk.
type Result struct {
	Path     string
	Title    string
	Platform string
	Ext      string
	Size     int64
}

// Client wraps the yt-dlp binary. The call is blocking and network/CPU
// bound; the worker runs it on its own goroutine with a deadline so the
// update loop never stalls behind it.
type Client struct {
	Binary     string
	FFmpegPath string
}

func NewClient() *Client {
	return &Client{
		Binary:     "yt-dlp",
		FFmpegPath: "/usr/bin/ffmpeg",
	}
}

// BuildArgs assembles the yt-dlp invocation for a job. Audio jobs take
// the best audio-only stream in its native container; video jobs merge
// the best streams up to the capped height into one mp4.
func (c *Client) BuildArgs(url string, kind queue.Kind, dir string) []string {
	args := []string{
		"--no-playlist",
		"--newline",
		"--print-json",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		"--ffmpeg-location", c.FFmpegPath,
	}

	if kind == queue.KindAudio {
		args = append(args, "-f", "bestaudio/best")
	} else {
		h := config.MaxVideoHeight
		args = append(args, "-f",
			fmt.Sprintf("bv[height<=%d]+ba/b[height<=%d]/b", h, h),
			"--merge-output-format", "mp4")
	}

	return append(args, url)
}

// Extract runs yt-dlp into dir and returns the resulting file plus its
// metadata. The scratch dir must exist and belong to this job alone; the
// caller removes it as a unit afterwards. Cancellation and the per-job
// timeout arrive through ctx, which kills the process.
func (c *Client) Extract(ctx context.Context, job *queue.Job, dir string, onProgress func(percent float64)) (*Result, error) {
	args := c.BuildArgs(job.URL, job.Kind, dir)

	cmd := exec.CommandContext(ctx, c.Binary, args...)

	stdout, _ := cmd.StdoutPipe()
	stderr, _ := cmd.StderrPipe()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	var metaLine string
	var stderrOutput strings.Builder
	var lastProgress float64
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(2)

	report := func(line string) {
		p := ParseProgress(line)
		mu.Lock()
		shouldReport := p.Percent > 0 && (p.Percent > lastProgress+2 || p.Percent >= 100)
		if shouldReport {
			lastProgress = p.Percent
		}
		percent := p.Percent
		mu.Unlock()
		if shouldReport && onProgress != nil {
			onProgress(percent)
		}
	}

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "{") {
				metaLine = line
				continue
			}
			report(line)
		}
	}()

	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			stderrOutput.WriteString(line + "\n")
			if strings.Contains(line, "[download]") && strings.Contains(line, "%") {
				report(line)
			}
		}
	}()

	wg.Wait()
	err := cmd.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("%s", ExtractError(stderrOutput.String()))
	}

	path, ext, err := findOutput(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("downloaded file not found")
	}

	title, platform := ParseMetadata(metaLine)
	if platform == "" {
		platform = job.Platform
	}

	return &Result{
		Path:     path,
		Title:    title,
		Platform: platform,
		Ext:      ext,
		Size:     info.Size(),
	}, nil
}

func findOutput(dir string) (path, ext string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read scratch dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".part") || strings.Contains(name, ".part-Frag") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		return filepath.Join(dir, name), strings.TrimPrefix(filepath.Ext(name), "."), nil
	}
	return "", "", fmt.Errorf("downloaded file not found")
}
